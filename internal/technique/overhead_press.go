package technique

import "github.com/ayusman/liftlens/internal/features"

const (
	ohpFlareGood   = 60.0
	ohpFlareWarn   = 75.0
	ohpBackGood    = 15.0
	ohpBackWarn    = 25.0
	ohpLockoutGood = 160.0
	ohpLockoutWarn = 145.0

	ohpPressShoulderMin = 60.0
)

var (
	ohpElbow = aspect{
		name:    "elbow_position",
		missing: "Could not measure elbow position: arms not visible or no 3D data.",
		ok:      "Good elbow position, tracking forward through the press.",
		warning: "Slight elbow flare (%.0f°). Keep your elbows tracking slightly forward during the press.",
		error:   "Excessive elbow flare (%.0f°). Drive your elbows forward and in; don't let them wing out to the sides.",
	}
	ohpLockout = aspect{
		name:    "lockout",
		missing: "Could not measure lockout: shoulders not visible.",
		ok:      "Good lockout, arms fully extended overhead.",
		warning: "Incomplete lockout (%.0f°). Press to full extension and shrug your traps at the top.",
		error:   "No lockout detected (%.0f°). Fully extend your arms overhead at the top of each rep.",
	}
	ohpBack = aspect{
		name:    "back_position",
		missing: "Could not measure back lean: shoulders/hips not visible or no 3D data.",
		ok:      "Good upright torso position.",
		warning: "Slight back lean (%.0f°). Brace your core and keep your torso vertical.",
		error:   "Excessive back lean (%.0f°). Avoid leaning back; tighten your core and glutes.",
	}
)

// OverheadPress grades elbow flare and back lean in world space during the
// press, and shoulder extension at lockout.
type OverheadPress struct{}

// Evaluate implements Engine.
func (OverheadPress) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, ohpElbowItem, ohpLockoutItem, ohpBackItem)
}

func pressPhase(frames []*features.FrameFeatures) []*features.FrameFeatures {
	return SelectPhase(frames, above(avgShoulder, ohpPressShoulderMin))
}

func ohpElbowItem(frames []*features.FrameFeatures) FeedbackItem {
	return ohpElbow.grade(
		medianOf(pressPhase(frames), elbowFlare),
		lowerIsBetter{ohpFlareGood, ohpFlareWarn},
	)
}

func ohpLockoutItem(frames []*features.FrameFeatures) FeedbackItem {
	return ohpLockout.grade(
		maxOf(frames, avgShoulder, noFloor),
		higherIsBetter{ohpLockoutGood, ohpLockoutWarn},
	)
}

func ohpBackItem(frames []*features.FrameFeatures) FeedbackItem {
	return ohpBack.grade(
		medianOf(pressPhase(frames), backLean),
		lowerIsBetter{ohpBackGood, ohpBackWarn},
	)
}
