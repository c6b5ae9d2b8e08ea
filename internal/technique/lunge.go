package technique

import "github.com/ayusman/liftlens/internal/features"

const (
	lungeDepthGood = 90.0
	lungeDepthWarn = 110.0
	lungeBackGood  = 50.0
	lungeBackWarn  = 65.0

	lungeBottomKneeMin = 45.0
	lungeBottomKneeMax = 100.0

	// Both knees must be flexed below this for the frame to be a lunge
	// rather than a walking stride.
	lungeBothBent = 160.0

	lungeBackFallbackPercentile = 0.90
)

var (
	lungeDepth = aspect{
		name:    "depth",
		missing: "Could not measure lunge depth: knees not visible.",
		ok:      "Good lunge depth.",
		warning: "Partial depth (%.0f°). Lower your back knee closer to the floor.",
		error:   "Insufficient depth (%.0f°). Step further forward and lower your hips.",
	}
	lungeBack = aspect{
		name:    "back_position",
		missing: "Could not measure back angle: shoulders/hips not visible.",
		ok:      "Good torso position.",
		warning: "Slight forward lean (%.0f°). Keep your torso upright.",
		error:   "Excessive forward lean (%.0f°). Keep your chest up and core engaged.",
	}
)

// Lunge grades depth of the front knee and torso lean at the bottom.
type Lunge struct{}

// Evaluate implements Engine.
func (Lunge) Evaluate(frames []*features.FrameFeatures) Result {
	return evaluate(frames, lungeDepthItem, lungeBackItem)
}

// deeperKnee is the more flexed knee, present only when both knees are bent.
func deeperKnee(f *features.FrameFeatures) *float64 {
	l, r := f.KneeAngleLeft, f.KneeAngleRight
	if l == nil || r == nil || *l >= lungeBothBent || *r >= lungeBothBent {
		return nil
	}
	v := min(*l, *r)
	return &v
}

func lungeDepthItem(frames []*features.FrameFeatures) FeedbackItem {
	return lungeDepth.grade(
		minOf(frames, deeperKnee, lungeBottomKneeMin),
		lowerIsBetter{lungeDepthGood, lungeDepthWarn},
	)
}

// Without a bottom window the back is judged on its high percentile over
// the whole video instead of falling back to every frame.
func lungeBackItem(frames []*features.FrameFeatures) FeedbackItem {
	bottom := filter(frames, both(
		within(deeperKnee, lungeBottomKneeMin, lungeBottomKneeMax),
		has(backAngle),
	))

	var back *float64
	if len(bottom) > 0 {
		back = medianOf(bottom, backAngle)
	} else {
		back = percentileOf(frames, backAngle, lungeBackFallbackPercentile)
	}

	return lungeBack.grade(back, lowerIsBetter{lungeBackGood, lungeBackWarn})
}
