package technique

import "github.com/ayusman/liftlens/internal/features"

// Back angle on a bench is close to 90° when lying flat.
const (
	benchFlatGood   = 70.0
	benchFlatWarn   = 50.0
	benchUnreadable = 100.0

	benchDepthGood   = 100.0
	benchDepthWarn   = 125.0
	benchLockoutGood = 155.0
	benchLockoutWarn = 135.0

	benchMinPlausibleElbow = 30.0
)

var (
	benchPosition = aspect{
		name:    "body_position",
		missing: "Could not detect body position. Ensure your full body is visible.",
		ok:      "Good setup, body correctly horizontal on the bench.",
		warning: "Body too elevated (%.0f°). Lie flat on the bench; this looks more like an incline press. " +
			"Use the Incline Bench Press exercise if that is your intention.",
		error: "Body position not suitable for flat bench press (%.0f°). " +
			"Lie flat on the bench, or switch to Incline Bench Press.",
	}
	benchDepth = aspect{
		name:    "depth",
		missing: "Could not measure elbow angle: arms not visible.",
		ok:      "Good depth, weight reaching the chest on each rep.",
		warning: "Partial range of motion (%.0f°). Lower the weight all the way to your chest before pressing back up.",
		error:   "Very incomplete range of motion (%.0f°). The weight must touch or nearly touch your chest for a full rep.",
	}
	benchLockout = aspect{
		name:    "lockout",
		missing: "Could not measure lockout: arms not visible.",
		ok:      "Good lockout, elbows fully extended at the top.",
		warning: "Incomplete lockout (%.0f°). Fully extend your elbows at the top of each rep.",
		error:   "Elbows significantly bent at the top (%.0f°). Press the bar to full arm extension on every rep.",
	}
)

const benchUnreadableMessage = "Could not reliably read body position from this camera angle. " +
	"Film from the side of the bench for accurate analysis."

// BenchPress grades a flat bench press filmed from the side. The body
// position check stands in for the camera view check.
type BenchPress struct{}

// Evaluate implements Engine.
func (BenchPress) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames,
		benchPositionItem,
		pressDepthItem(benchDepth),
		pressLockoutItem(benchLockout),
	)
}

func benchPositionItem(frames []*features.FrameFeatures) FeedbackItem {
	pos := medianOf(frames, backAngle)
	if pos != nil && *pos > benchUnreadable {
		return benchPosition.item(Error, benchUnreadableMessage)
	}
	return benchPosition.grade(pos, higherIsBetter{benchFlatGood, benchFlatWarn})
}

// pressDepthItem grades the deepest elbow angle of a bench press variant.
func pressDepthItem(a aspect) aspectFunc {
	return func(frames []*features.FrameFeatures) FeedbackItem {
		return a.grade(
			minOf(frames, avgElbow, benchMinPlausibleElbow),
			lowerIsBetter{benchDepthGood, benchDepthWarn},
		)
	}
}

// pressLockoutItem grades the straightest elbow angle of a bench press variant.
func pressLockoutItem(a aspect) aspectFunc {
	return func(frames []*features.FrameFeatures) FeedbackItem {
		return a.grade(
			maxOf(frames, avgElbow, benchMinPlausibleElbow),
			higherIsBetter{benchLockoutGood, benchLockoutWarn},
		)
	}
}
