package technique

import (
	"math"

	"github.com/ayusman/liftlens/internal/features"
	"github.com/ayusman/liftlens/internal/stats"
)

// Metric reads one angle from a frame, nil when it was not measured.
type Metric func(f *features.FrameFeatures) *float64

var (
	avgKnee     Metric = (*features.FrameFeatures).AvgKnee
	avgHip      Metric = (*features.FrameFeatures).AvgHip
	avgElbow    Metric = (*features.FrameFeatures).AvgElbow
	avgShoulder Metric = (*features.FrameFeatures).AvgShoulder

	backAngle  Metric = func(f *features.FrameFeatures) *float64 { return f.BackAngle }
	elbowFlare Metric = func(f *features.FrameFeatures) *float64 { return f.ElbowFlare3D }
	backLean   Metric = func(f *features.FrameFeatures) *float64 { return f.BackLean3D }
)

// noFloor keeps every measured value.
const noFloor = 0.0

// values collects m over frames, skipping absent values and values below the
// plausibility floor.
func values(frames []*features.FrameFeatures, m Metric, floor float64) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if v := m(f); v != nil && *v >= floor {
			out = append(out, *v)
		}
	}
	return out
}

func minOf(frames []*features.FrameFeatures, m Metric, floor float64) *float64 {
	return opt(stats.Min(values(frames, m, floor)))
}

func maxOf(frames []*features.FrameFeatures, m Metric, floor float64) *float64 {
	return opt(stats.Max(values(frames, m, floor)))
}

func medianOf(frames []*features.FrameFeatures, m Metric) *float64 {
	return opt(stats.Median(values(frames, m, noFloor)))
}

func percentileOf(frames []*features.FrameFeatures, m Metric, p float64) *float64 {
	return opt(stats.Percentile(values(frames, m, noFloor), p))
}

func opt(v float64, ok bool) *float64 {
	if !ok || math.IsNaN(v) {
		return nil
	}
	return &v
}
