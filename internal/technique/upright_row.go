package technique

import (
	"fmt"

	"github.com/ayusman/liftlens/internal/features"
)

const (
	rowHeightGoodMin = 70.0
	rowHeightGoodMax = 120.0 // above this the shoulder risks impingement
	rowHeightWarnMin = 40.0
	rowElbowGood     = 100.0
	rowElbowWarn     = 130.0
	rowSwingGood     = 15.0
	rowSwingWarn     = 25.0

	rowPullShoulderMin   = 25.0
	rowMinFrames         = 5
	rowMinFraction       = 0.05
	rowHeightPercentile  = 0.85
	rowMinPlausibleElbow = 30.0
)

var (
	rowHeight = aspect{
		name:    "pull_height",
		missing: "Could not detect pull height: shoulders not visible.",
		ok:      "Good pull height, elbows reaching shoulder level.",
		warning: "Bar not coming up high enough (%.0f°). Pull until your elbows are level with your shoulders.",
		error:   "Very low pull (%.0f°). Drive your elbows upward until they reach shoulder height.",
	}
	rowElbow = aspect{
		name:          "elbow_bend",
		missing:       "Could not assess elbow bend: arms not visible from this angle.",
		missingStatus: Warning,
		ok:            "Good elbow bend, arms properly bent at the top of the pull.",
		warning: "Elbows not bending enough (%.0f°). Drive your elbows up and let the bar hang; " +
			"elbows should always be higher than your wrists.",
		error: "Arms barely bent (%.0f°). Pull the bar toward your chin by driving elbows upward, " +
			"and use a lighter weight if needed.",
	}
	rowSwing = aspect{
		name:          "body_swing",
		missing:       "Could not assess body swing. Position the camera directly in front of you.",
		missingStatus: Warning,
		ok:            "Good control, no excessive body swing.",
		warning:       "Slight body lean detected (%.0f°). Keep your torso upright and lower the weight if needed.",
		error: "Significant torso lean (%.0f°). You are using momentum instead of your shoulders and traps. " +
			"Use a lighter weight and pull with a slow, controlled motion.",
	}
)

// UprightRow grades pull height, elbow bend and torso swing, filmed from the front.
type UprightRow struct{}

// Evaluate implements Engine.
func (UprightRow) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, rowHeightItem, rowElbowItem, rowSwingItem)
}

func pullPhase(frames []*features.FrameFeatures) []*features.FrameFeatures {
	return SelectPhaseMin(frames,
		above(avgShoulder, rowPullShoulderMin),
		minPhaseCount(len(frames), rowMinFrames, rowMinFraction),
	)
}

func pullPhaseOrAll(frames []*features.FrameFeatures) []*features.FrameFeatures {
	if pull := pullPhase(frames); pull != nil {
		return pull
	}
	return frames
}

// The 85th percentile reflects how high the elbows typically rise without
// being dominated by a single noisy frame.
func rowHeightItem(frames []*features.FrameFeatures) FeedbackItem {
	peak := percentileOf(pullPhaseOrAll(frames), avgShoulder, rowHeightPercentile)

	if peak != nil && *peak > rowHeightGoodMax {
		return rowHeight.item(Warning, fmt.Sprintf(
			"Elbows raised too high (%.0f°). Stop when elbows are level with your shoulders; "+
				"pulling higher puts the shoulder joint into impingement.", *peak))
	}
	return rowHeight.grade(peak, higherIsBetter{rowHeightGoodMin, rowHeightWarnMin})
}

func rowElbowItem(frames []*features.FrameFeatures) FeedbackItem {
	pull := pullPhase(frames)
	if pull == nil {
		return rowElbow.unmeasured()
	}
	return rowElbow.grade(
		minOf(pull, avgElbow, rowMinPlausibleElbow),
		lowerIsBetter{rowElbowGood, rowElbowWarn},
	)
}

func rowSwingItem(frames []*features.FrameFeatures) FeedbackItem {
	return rowSwing.grade(
		medianOf(pullPhaseOrAll(frames), backLean),
		lowerIsBetter{rowSwingGood, rowSwingWarn},
	)
}
