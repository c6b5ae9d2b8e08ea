package technique

import (
	"fmt"

	"github.com/ayusman/liftlens/internal/features"
)

const (
	rdlDepthGood = 45.0
	rdlDepthWarn = 30.0

	rdlKneeStraightWarn = 168.0
	rdlKneeBentWarn     = 130.0

	rdlHingeBackMin = 20.0
)

var (
	rdlDepth = aspect{
		name:    "hinge_depth",
		missing: "Could not measure hinge depth: hips/shoulders not visible.",
		ok:      "Good hip hinge depth, hamstrings fully loaded.",
		warning: "Shallow hinge (%.0f°). Push your hips further back and lower the weight until you feel a strong hamstring stretch.",
		error:   "Insufficient hip hinge (%.0f°). Drive your hips back as if touching a wall behind you. The bar should travel close to your legs.",
	}
	rdlKnee = aspect{
		name:    "knee_position",
		missing: "Could not measure knee angle: knees not visible.",
		ok:      "Good knee position, soft bend maintained throughout the hinge.",
	}
)

// RomanianDeadlift grades hinge depth and knee bend during the hinge.
type RomanianDeadlift struct{}

// Evaluate implements Engine.
func (RomanianDeadlift) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, rdlDepthItem, rdlKneeItem)
}

func rdlDepthItem(frames []*features.FrameFeatures) FeedbackItem {
	return rdlDepth.grade(
		maxOf(frames, backAngle, noFloor),
		higherIsBetter{rdlDepthGood, rdlDepthWarn},
	)
}

func rdlKneeItem(frames []*features.FrameFeatures) FeedbackItem {
	hinge := SelectPhase(frames, above(backAngle, rdlHingeBackMin))
	knee := medianOf(hinge, avgKnee)

	switch {
	case knee == nil:
		return rdlKnee.unmeasured()
	case *knee > rdlKneeStraightWarn:
		return rdlKnee.item(Warning, fmt.Sprintf(
			"Knees too straight (%.0f°). Unlock your knees slightly; a soft bend reduces stress on the hamstring attachments.", *knee))
	case *knee < rdlKneeBentWarn:
		return rdlKnee.item(Warning, fmt.Sprintf(
			"Knees too bent (%.0f°). This looks more like a deadlift than an RDL. "+
				"Keep a slight, consistent bend and push your hips back, not your knees forward.", *knee))
	default:
		return rdlKnee.item(OK, rdlKnee.ok)
	}
}
