package technique

import (
	"fmt"

	"github.com/ayusman/liftlens/internal/features"
	"github.com/ayusman/liftlens/internal/stats"
)

const (
	deadliftLockoutGood  = 10.0
	deadliftLockoutWarn  = 20.0
	deadliftStiffLegWarn = 145.0

	deadliftHingeBackMin     = 35.0
	deadliftMinPlausibleKnee = 60.0
)

var (
	deadliftSetup = aspect{
		name:    "setup",
		missing: "Could not measure setup: knees not visible during the pull.",
		ok:      "Good starting position, knees appropriately bent at setup.",
	}
	deadliftLockout = aspect{
		name:    "lockout",
		missing: "Could not measure lockout: hips/shoulders not visible.",
		ok:      "Good lockout, hips fully extended at the top.",
		warning: "Incomplete lockout (%.0f°). Drive your hips through to full extension and squeeze your glutes at the top.",
		error:   "No lockout achieved (%.0f°). Fully extend hips and knees at the top of every rep.",
	}
)

// Deadlift grades knee bend at setup and hip extension at lockout.
type Deadlift struct{}

// Evaluate implements Engine.
func (Deadlift) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, deadliftSetupItem, deadliftLockoutItem)
}

func deadliftSetupItem(frames []*features.FrameFeatures) FeedbackItem {
	hinge := SelectPhase(frames, above(backAngle, deadliftHingeBackMin))
	knee := minOf(hinge, avgKnee, deadliftMinPlausibleKnee)

	switch {
	case knee == nil:
		return deadliftSetup.unmeasured()
	case *knee > deadliftStiffLegWarn:
		return deadliftSetup.item(Warning, fmt.Sprintf(
			"Knees too straight at setup (%.0f°). This looks like a stiff-leg deadlift. "+
				"Bend your knees more before pulling: sit into the bar and drive your hips down.", *knee))
	default:
		return deadliftSetup.item(OK, deadliftSetup.ok)
	}
}

// Standing before the pull looks the same as a lockout in a single frame, so
// lockout is read only from the deepest hinge onwards.
func deadliftLockoutItem(frames []*features.FrameFeatures) FeedbackItem {
	return deadliftLockout.grade(
		minOf(afterPeak(frames, backAngle), backAngle, noFloor),
		lowerIsBetter{deadliftLockoutGood, deadliftLockoutWarn},
	)
}

// afterPeak returns the frames from the first maximum of m onwards. Frames
// without m are ignored when locating the peak; if none carry m, all frames
// are returned.
func afterPeak(frames []*features.FrameFeatures, m Metric) []*features.FrameFeatures {
	idx := make([]int, 0, len(frames))
	vals := make([]float64, 0, len(frames))
	for i, f := range frames {
		if v := m(f); v != nil {
			idx = append(idx, i)
			vals = append(vals, *v)
		}
	}

	peak, ok := stats.ArgMax(vals)
	if !ok {
		return frames
	}
	return frames[idx[peak]:]
}
