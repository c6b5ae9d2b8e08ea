package technique

import "github.com/ayusman/liftlens/internal/features"

const (
	pullUpRangeGood     = 90.0
	pullUpRangeWarn     = 120.0
	pullUpExtensionGood = 160.0
	pullUpExtensionWarn = 140.0

	pullUpMinPlausibleElbow = 45.0
)

var (
	pullUpRange = aspect{
		name:    "range_of_motion",
		missing: "Could not measure elbow angle: arms not visible.",
		ok:      "Good range of motion, full height achieved.",
		warning: "Partial rep (%.0f°). Pull higher until your chin clears the overhead grip.",
		error:   "Insufficient height (%.0f°). Pull yourself much higher; your chin must clear the grip point.",
	}
	pullUpExtension = aspect{
		name:    "full_extension",
		missing: "Could not measure arm extension: arms not visible.",
		ok:      "Good dead hang, arms fully extended between reps.",
		warning: "Incomplete extension (%.0f°). Fully hang between reps to maximise range of motion.",
		error:   "Arms not fully extended (%.0f°). Let your arms straighten completely at the bottom of each rep.",
	}
)

// PullUp grades height at the top and extension at the dead hang.
type PullUp struct{}

// Evaluate implements Engine.
func (PullUp) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, pullUpRangeItem, pullUpExtensionItem)
}

func pullUpRangeItem(frames []*features.FrameFeatures) FeedbackItem {
	return pullUpRange.grade(
		minOf(frames, avgElbow, pullUpMinPlausibleElbow),
		lowerIsBetter{pullUpRangeGood, pullUpRangeWarn},
	)
}

func pullUpExtensionItem(frames []*features.FrameFeatures) FeedbackItem {
	return pullUpExtension.grade(
		maxOf(frames, avgElbow, noFloor),
		higherIsBetter{pullUpExtensionGood, pullUpExtensionWarn},
	)
}
