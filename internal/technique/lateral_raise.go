package technique

import (
	"fmt"

	"github.com/ayusman/liftlens/internal/features"
)

// Shoulder angle is hip-shoulder-elbow; arms parallel to the floor read
// roughly 80-100°.
const (
	raiseHeightGood = 80.0
	raiseHeightWarn = 60.0
	raiseSwingGood  = 15.0
	raiseSwingWarn  = 22.0
	raiseElbowGood  = 135.0

	raiseShoulderMin   = 40.0
	raiseMinFrames     = 10
	raiseMinFraction   = 0.05
	raiseElbowArtifact = 90.0
)

var (
	raiseHeight = aspect{
		name:    "arm_height",
		missing: "Could not measure arm height: shoulders/elbows not visible.",
		ok:      "Good raise height, arms reaching shoulder level.",
		warning: "Partial range (%.0f°). Raise your arms until they are parallel to the floor.",
		error:   "Arms too low (%.0f°). Raise to shoulder height; imagine pouring water from a jug at your sides.",
	}
	raiseSwing = aspect{
		name:    "body_swing",
		missing: "Could not measure body swing: hips/shoulders not visible or no 3D data.",
		ok:      "Good torso stability, minimal body swing.",
		warning: "Slight body lean (%.0f°). Brace your core and avoid using momentum to raise the weight.",
		error:   "Excessive body swing (%.0f°). Lower the weight and raise with strict form; your torso stays vertical.",
	}
	raiseElbow = aspect{
		name: "elbow_position",
		missing: "Could not assess elbow angle from this camera angle. " +
			"Position the camera directly in front of you for accurate elbow tracking.",
		missingStatus: Warning,
		ok:            "Good elbow position, slight bend maintained.",
	}
)

// LateralRaise grades raise height, torso swing and elbow bend. The raise
// phase is only trusted when enough frames show the arms lifted.
type LateralRaise struct{}

// Evaluate implements Engine.
func (LateralRaise) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, raiseHeightItem, raiseSwingItem, raiseElbowItem)
}

// raisePhase returns nil when the arms were not seen lifting, which usually
// means the camera is not in front of the lifter.
func raisePhase(frames []*features.FrameFeatures) []*features.FrameFeatures {
	return SelectPhaseMin(frames,
		above(avgShoulder, raiseShoulderMin),
		minPhaseCount(len(frames), raiseMinFrames, raiseMinFraction),
	)
}

func raiseHeightItem(frames []*features.FrameFeatures) FeedbackItem {
	return raiseHeight.grade(
		maxOf(frames, avgShoulder, noFloor),
		higherIsBetter{raiseHeightGood, raiseHeightWarn},
	)
}

func raiseSwingItem(frames []*features.FrameFeatures) FeedbackItem {
	source := raisePhase(frames)
	if source == nil {
		source = frames
	}
	return raiseSwing.grade(
		medianOf(source, backLean),
		lowerIsBetter{raiseSwingGood, raiseSwingWarn},
	)
}

// Elbow angles under 90° cannot occur in a lateral raise; they are a 2D
// projection artifact and count as not assessed.
func raiseElbowItem(frames []*features.FrameFeatures) FeedbackItem {
	phase := raisePhase(frames)
	if phase == nil {
		return raiseElbow.unmeasured()
	}

	elbow := medianOf(phase, avgElbow)
	switch {
	case elbow == nil || *elbow < raiseElbowArtifact:
		return raiseElbow.unmeasured()
	case *elbow >= raiseElbowGood:
		return raiseElbow.item(OK, raiseElbow.ok)
	default:
		return raiseElbow.item(Warning, fmt.Sprintf(
			"Elbows too bent (%.0f°). Keep a soft bend in the elbow and avoid turning the movement into a curl.", *elbow))
	}
}
