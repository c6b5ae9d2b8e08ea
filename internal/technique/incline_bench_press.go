package technique

import (
	"fmt"

	"github.com/ayusman/liftlens/internal/features"
)

// Accepted back angle band for a 30-45° bench.
const (
	inclinePositionMin = 35.0
	inclinePositionMax = 70.0
)

var (
	inclinePosition = aspect{
		name:    "body_position",
		missing: "Could not detect body position. Ensure your full body is visible.",
		ok:      "Good bench angle, torso at the correct incline for upper chest activation.",
	}
	inclineDepth = aspect{
		name:    "depth",
		missing: "Could not measure elbow angle: arms not visible.",
		ok:      "Good depth, weight reaching the upper chest on each rep.",
		warning: "Partial range of motion (%.0f°). Lower the weight all the way to your upper chest (just below the clavicle) before pressing.",
		error:   "Very incomplete range of motion (%.0f°). The weight must reach your upper chest for a full rep.",
	}
)

// InclineBenchPress grades an incline bench press filmed from the side.
type InclineBenchPress struct{}

// Evaluate implements Engine.
func (InclineBenchPress) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames,
		inclinePositionItem,
		pressDepthItem(inclineDepth),
		pressLockoutItem(benchLockout),
	)
}

func inclinePositionItem(frames []*features.FrameFeatures) FeedbackItem {
	pos := medianOf(frames, backAngle)

	switch {
	case pos == nil:
		return inclinePosition.unmeasured()
	case *pos > inclinePositionMax:
		return inclinePosition.item(Warning, fmt.Sprintf(
			"Bench angle too flat (%.0f°). Raise the bench to 30-45°, "+
				"or switch to Flat Bench Press if you intend to press horizontally.", *pos))
	case *pos < inclinePositionMin:
		return inclinePosition.item(Warning, fmt.Sprintf(
			"Bench angle too steep (%.0f°). Lower the bench to 30-45°; "+
				"angles above 55° shift the load from upper chest to front delts.", *pos))
	default:
		return inclinePosition.item(OK, inclinePosition.ok)
	}
}
