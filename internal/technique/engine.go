// Package technique evaluates exercise technique from per-frame features.
//
// Each supported exercise has an Engine. Engines share one shape: drop frames
// without a pose, select the working phase of the movement, reduce an angle
// over that phase to a statistic and grade it against two-tier thresholds.
// Every aspect produces exactly one FeedbackItem.
package technique

import "github.com/ayusman/liftlens/internal/features"

// Engine evaluates the feature sequence of one video.
// Implementations are stateless and safe for concurrent use.
type Engine interface {
	Evaluate(frames []*features.FrameFeatures) Result
}

// aspectFunc evaluates one aspect over the frames that carry a pose.
type aspectFunc func(frames []*features.FrameFeatures) FeedbackItem

// evaluate drops absent frames and runs each aspect in order.
func evaluate(frames []*features.FrameFeatures, aspects ...aspectFunc) Result {
	kept := present(frames)
	if len(kept) == 0 {
		return NoPoseResult()
	}

	items := make([]FeedbackItem, 0, len(aspects))
	for _, a := range aspects {
		items = append(items, a(kept))
	}
	return NewResult(items...)
}

func present(frames []*features.FrameFeatures) []*features.FrameFeatures {
	out := make([]*features.FrameFeatures, 0, len(frames))
	for _, f := range frames {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
