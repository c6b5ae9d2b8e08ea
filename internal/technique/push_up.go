package technique

import (
	"math"

	"github.com/ayusman/liftlens/internal/features"
)

const (
	pushUpAlignmentGood = 15.0
	pushUpAlignmentWarn = 30.0
	pushUpDepthGood     = 100.0
	pushUpDepthWarn     = 115.0

	pushUpPhaseElbowMax = 150.0
)

var (
	pushUpAlignment = aspect{
		name:    "body_alignment",
		missing: "Could not measure body alignment: hips not visible.",
		ok:      "Good body alignment, straight from head to heels.",
		warning: "Body not fully straight (%.0f° deviation). Engage your core and glutes to maintain a rigid plank position.",
		error:   "Significant hip sag or pike (%.0f° deviation). Keep your body in a straight line throughout the movement.",
	}
	pushUpDepth = aspect{
		name:    "depth",
		missing: "Could not measure push-up depth: elbows not visible.",
		ok:      "Good depth, chest close to the floor.",
		warning: "Partial depth (%.0f°). Lower your chest closer to the floor.",
		error:   "Insufficient depth (%.0f°). Bend your elbows much more; your chest should nearly touch the floor.",
	}
)

// PushUp grades plank alignment during the push and depth at the bottom.
type PushUp struct{}

// Evaluate implements Engine.
func (PushUp) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, pushUpAlignmentItem, pushUpDepthItem)
}

// hipDeviation is how far the hip is from a straight shoulder-hip-knee line.
func hipDeviation(f *features.FrameFeatures) *float64 {
	h := f.AvgHip()
	if h == nil {
		return nil
	}
	v := math.Abs(180 - *h)
	return &v
}

func pushUpAlignmentItem(frames []*features.FrameFeatures) FeedbackItem {
	push := SelectPhase(frames, both(below(avgElbow, pushUpPhaseElbowMax), has(avgHip)))
	return pushUpAlignment.grade(
		medianOf(push, hipDeviation),
		lowerIsBetter{pushUpAlignmentGood, pushUpAlignmentWarn},
	)
}

func pushUpDepthItem(frames []*features.FrameFeatures) FeedbackItem {
	return pushUpDepth.grade(
		minOf(frames, avgElbow, noFloor),
		lowerIsBetter{pushUpDepthGood, pushUpDepthWarn},
	)
}
