package technique

import "fmt"

// Severity grades a single feedback item. Ordered ok < warning < error.
type Severity string

// Severity levels.
const (
	OK      Severity = "ok"
	Warning Severity = "warning"
	Error   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case Warning:
		return 1
	case Error:
		return 2
	default:
		return 0
	}
}

// Score is the aggregated label of an analysis.
type Score string

// Overall scores.
const (
	Good             Score = "good"
	NeedsImprovement Score = "needs_improvement"
	Poor             Score = "poor"
)

// Aspects shared by every exercise.
const (
	AspectGeneral     = "general"
	AspectCameraAngle = "camera_angle"
)

// FeedbackItem is the evaluation of one technique aspect.
type FeedbackItem struct {
	Aspect  string   `json:"aspect"`
	Status  Severity `json:"status"`
	Message string   `json:"message"`
}

// Result is the outcome of analysing one video.
type Result struct {
	Overall  Score          `json:"overall_score"`
	Feedback []FeedbackItem `json:"feedback"`
}

// NewResult builds a Result whose Overall score follows from the items:
// poor if any item is an error, needs_improvement if any is a warning,
// good otherwise.
func NewResult(items ...FeedbackItem) Result {
	return Result{Overall: Overall(items), Feedback: items}
}

// Overall returns the score implied by the worst severity in items.
func Overall(items []FeedbackItem) Score {
	worst := OK
	for _, it := range items {
		if it.Status.rank() > worst.rank() {
			worst = it.Status
		}
	}

	switch worst {
	case Error:
		return Poor
	case Warning:
		return NeedsImprovement
	default:
		return Good
	}
}

// NoPoseResult is returned when no frame of the video contained a pose.
func NoPoseResult() Result {
	return NewResult(FeedbackItem{
		Aspect:  AspectGeneral,
		Status:  Error,
		Message: "No pose detected in video.",
	})
}

// UnsupportedResult is returned for an exercise without a rule engine.
func UnsupportedResult(exerciseID string) Result {
	return NewResult(FeedbackItem{
		Aspect:  AspectGeneral,
		Status:  Error,
		Message: fmt.Sprintf("Exercise '%s' is not yet supported.", exerciseID),
	})
}

// CameraAngleResult is returned when the video was filmed from the wrong view.
func CameraAngleResult(message string) Result {
	return NewResult(FeedbackItem{
		Aspect:  AspectCameraAngle,
		Status:  Error,
		Message: message,
	})
}

// Item returns the feedback for aspect, if present.
func (r Result) Item(aspect string) (FeedbackItem, bool) {
	for _, it := range r.Feedback {
		if it.Aspect == aspect {
			return it, true
		}
	}
	return FeedbackItem{}, false
}
