package technique

import "fmt"

// grader maps a measured angle to a severity.
type grader interface {
	grade(v float64) Severity
}

// lowerIsBetter grades v ≤ good as ok and v ≤ warn as warning.
type lowerIsBetter struct {
	good, warn float64
}

func (t lowerIsBetter) grade(v float64) Severity {
	switch {
	case v <= t.good:
		return OK
	case v <= t.warn:
		return Warning
	default:
		return Error
	}
}

// higherIsBetter grades v ≥ good as ok and v ≥ warn as warning.
type higherIsBetter struct {
	good, warn float64
}

func (t higherIsBetter) grade(v float64) Severity {
	switch {
	case v >= t.good:
		return OK
	case v >= t.warn:
		return Warning
	default:
		return Error
	}
}

// aspect holds the messages of one graded aspect. The warning and error
// messages are format strings receiving the measured angle.
type aspect struct {
	name string

	// missing is reported when the statistic could not be computed.
	missing       string
	missingStatus Severity

	ok      string
	warning string
	error   string
}

// grade produces the aspect's feedback for a measured value.
func (a aspect) grade(v *float64, g grader) FeedbackItem {
	if v == nil {
		return a.unmeasured()
	}

	switch g.grade(*v) {
	case OK:
		return a.item(OK, a.ok)
	case Warning:
		return a.item(Warning, fmt.Sprintf(a.warning, *v))
	default:
		return a.item(Error, fmt.Sprintf(a.error, *v))
	}
}

func (a aspect) unmeasured() FeedbackItem {
	status := a.missingStatus
	if status == "" {
		status = Error
	}
	return a.item(status, a.missing)
}

func (a aspect) item(s Severity, msg string) FeedbackItem {
	return FeedbackItem{Aspect: a.name, Status: s, Message: msg}
}
