package technique

import "github.com/ayusman/liftlens/internal/features"

// Knee angle is hip-knee-ankle, lower is deeper. Back angle is spine against
// vertical, lower is more upright.
const (
	squatDepthGood = 90.0
	squatDepthWarn = 110.0
	squatBackGood  = 35.0
	squatBackWarn  = 50.0

	squatBottomKneeMin = 45.0
	squatBottomKneeMax = 100.0
)

var (
	squatDepth = aspect{
		name:    "depth",
		missing: "Could not measure squat depth: knees not visible.",
		ok:      "Good squat depth.",
		warning: "Partial depth (%.0f°). Aim for thighs parallel to the floor (≤90°).",
		error:   "Insufficient depth (%.0f°). Squat much lower.",
	}
	squatBack = aspect{
		name:    "back_position",
		missing: "Could not measure back angle: shoulders/hips not visible.",
		ok:      "Good back position.",
		warning: "Slight forward lean (%.0f°). Keep your chest up.",
		error:   "Excessive forward lean (%.0f°). Engage your core and keep torso upright.",
	}
)

// Squat grades depth and torso lean at the bottom of the squat.
type Squat struct{}

// Evaluate implements Engine.
func (Squat) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, squatDepthItem, squatBackItem)
}

func squatDepthItem(frames []*features.FrameFeatures) FeedbackItem {
	return squatDepth.grade(
		minOf(frames, avgKnee, squatBottomKneeMin),
		lowerIsBetter{squatDepthGood, squatDepthWarn},
	)
}

// Standing frames are excluded: back angle is only read in the bottom window.
func squatBackItem(frames []*features.FrameFeatures) FeedbackItem {
	bottom := SelectPhase(frames, within(avgKnee, squatBottomKneeMin, squatBottomKneeMax))
	return squatBack.grade(
		medianOf(bottom, backAngle),
		lowerIsBetter{squatBackGood, squatBackWarn},
	)
}
