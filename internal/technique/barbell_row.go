package technique

import "github.com/ayusman/liftlens/internal/features"

// Back angle here is higher-is-better: the torso should be hinged forward.
const (
	barbellBackGood = 55.0
	barbellBackWarn = 30.0
	barbellROMGood  = 100.0
	barbellROMWarn  = 130.0

	barbellRowBackMin        = 30.0
	barbellMinPlausibleElbow = 30.0
)

var (
	barbellBack = aspect{
		name:    "back_position",
		missing: "Could not measure torso angle: hips/shoulders not visible.",
		ok:      "Good torso angle, properly hinged forward throughout the set.",
		warning: "Torso too upright (%.0f°). Hinge forward more at the hips; aim for your torso parallel to the floor to maximise lat engagement.",
		error:   "Not enough forward lean (%.0f°). Bend at the hips until your torso is roughly parallel to the floor before pulling.",
	}
	barbellROM = aspect{
		name:    "pull_rom",
		missing: "Could not measure pull range: elbows not visible.",
		ok:      "Good pull, bar reaching the body with elbows fully bent.",
		warning: "Partial range of motion (%.0f°). Pull the bar all the way to your lower chest or belly and drive your elbows behind your body.",
		error:   "Very incomplete pull (%.0f°). Bend your elbows fully and pull the bar to your torso on every rep.",
	}
)

// BarbellRow grades the hinge angle during the row and the pull range.
type BarbellRow struct{}

// Evaluate implements Engine.
func (BarbellRow) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, barbellBackItem, barbellROMItem)
}

func barbellBackItem(frames []*features.FrameFeatures) FeedbackItem {
	row := SelectPhase(frames, above(backAngle, barbellRowBackMin))
	return barbellBack.grade(
		medianOf(row, backAngle),
		higherIsBetter{barbellBackGood, barbellBackWarn},
	)
}

func barbellROMItem(frames []*features.FrameFeatures) FeedbackItem {
	return barbellROM.grade(
		minOf(frames, avgElbow, barbellMinPlausibleElbow),
		lowerIsBetter{barbellROMGood, barbellROMWarn},
	)
}
