package technique

import (
	"math"

	"github.com/ayusman/liftlens/internal/features"
)

// Predicate reports whether a frame belongs to a movement phase.
type Predicate func(f *features.FrameFeatures) bool

// SelectPhase returns the frames matching pred. If none match it returns all
// frames, so the working set is never empty for a non-empty input.
func SelectPhase(frames []*features.FrameFeatures, pred Predicate) []*features.FrameFeatures {
	phase := filter(frames, pred)
	if len(phase) == 0 {
		return frames
	}
	return phase
}

// SelectPhaseMin returns the frames matching pred, or nil when fewer than
// minCount match. A nil result means the phase was not reliably detected.
func SelectPhaseMin(frames []*features.FrameFeatures, pred Predicate, minCount int) []*features.FrameFeatures {
	phase := filter(frames, pred)
	if len(phase) < minCount {
		return nil
	}
	return phase
}

// minPhaseCount is the larger of floor and fraction of n, rounded up.
func minPhaseCount(n, floor int, fraction float64) int {
	return max(floor, int(math.Ceil(float64(n)*fraction)))
}

func filter(frames []*features.FrameFeatures, pred Predicate) []*features.FrameFeatures {
	var out []*features.FrameFeatures
	for _, f := range frames {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// above matches frames where m is present and strictly greater than threshold.
func above(m Metric, threshold float64) Predicate {
	return func(f *features.FrameFeatures) bool {
		v := m(f)
		return v != nil && *v > threshold
	}
}

// below matches frames where m is present and strictly less than threshold.
func below(m Metric, threshold float64) Predicate {
	return func(f *features.FrameFeatures) bool {
		v := m(f)
		return v != nil && *v < threshold
	}
}

// within matches frames where m is present and in [lo, hi].
func within(m Metric, lo, hi float64) Predicate {
	return func(f *features.FrameFeatures) bool {
		v := m(f)
		return v != nil && *v >= lo && *v <= hi
	}
}

func has(m Metric) Predicate {
	return func(f *features.FrameFeatures) bool {
		return m(f) != nil
	}
}

func both(a, b Predicate) Predicate {
	return func(f *features.FrameFeatures) bool {
		return a(f) && b(f)
	}
}
