// Package cameraview decides whether a landmark sequence was filmed from the
// viewing angle an exercise requires.
//
// The decision is based on the spread ratio: horizontal shoulder width divided
// by vertical torso height. It is close to zero when the camera is directly to
// the side and grows as the person rotates towards the camera.
package cameraview

import (
	"fmt"
	"math"

	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/stats"
)

// View is the camera position an exercise must be filmed from.
type View string

// Supported views.
const (
	Side  View = "side"
	Front View = "front"
	Any   View = "any"
)

// ParseView converts a string into a View.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case Side, Front, Any:
		return v, nil
	default:
		return "", fmt.Errorf("unknown camera view %q", s)
	}
}

const (
	// MinFrames is the minimum number of frames with a detected pose.
	MinFrames = 10

	// SideThreshold is the spread ratio below which a sequence counts as side view.
	SideThreshold = 0.50

	// DefaultFrontThreshold is the spread ratio at or above which a sequence
	// counts as front view.
	DefaultFrontThreshold = 0.50
)

// Reason identifies why a sequence was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonTooFewFrames   Reason = "too_few_frames"
	ReasonNoBodyPosition Reason = "no_body_position"
	ReasonWrongAngle     Reason = "wrong_angle"
)

const (
	msgTooFewFrames   = "Too few frames with pose detected. Ensure your full body is visible and well-lit."
	msgNoBodyPosition = "Could not detect body position. Ensure your full body is visible and well-lit."
	msgWrongSide      = "Camera angle incorrect. Position the camera directly to your side at hip height, perpendicular to your movement direction."
	msgWrongFront     = "Camera angle incorrect. Position the camera directly in front of you, facing your chest, at approximately shoulder height."
)

// Rejection is returned by Check when a sequence does not satisfy the
// required view. Message is meant for the end user.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Validator checks camera views. The zero value uses DefaultFrontThreshold.
type Validator struct {
	FrontThreshold float64
}

// NewValidator creates a Validator. A non-positive threshold selects the default.
func NewValidator(frontThreshold float64) *Validator {
	return &Validator{FrontThreshold: frontThreshold}
}

func (v *Validator) frontThreshold() float64 {
	if v == nil || v.FrontThreshold <= 0 {
		return DefaultFrontThreshold
	}
	return v.FrontThreshold
}

// Check returns nil when seq was filmed from view, otherwise a *Rejection.
// Unknown views are checked as Side.
func (v *Validator) Check(seq []*detector.PoseLandmarks, view View) error {
	if detector.CountDetected(seq) < MinFrames {
		return &Rejection{Reason: ReasonTooFewFrames, Message: msgTooFewFrames}
	}

	ratio, ok := v.SpreadRatio(seq)
	if !ok {
		return &Rejection{Reason: ReasonNoBodyPosition, Message: msgNoBodyPosition}
	}

	isSide := ratio < SideThreshold
	isFront := ratio >= v.frontThreshold()

	switch view {
	case Front:
		if !isFront {
			return wrongAngle(msgWrongFront)
		}
	case Any:
		if !isSide && !isFront {
			return wrongAngle(msgWrongFront)
		}
	default:
		if !isSide {
			return wrongAngle(msgWrongSide)
		}
	}
	return nil
}

func wrongAngle(msg string) error {
	return &Rejection{Reason: ReasonWrongAngle, Message: msg}
}

// SpreadRatio returns the median spread ratio over the frames where both
// shoulders and both hips are confidently tracked. ok is false when no frame
// yields a finite ratio.
func (v *Validator) SpreadRatio(seq []*detector.PoseLandmarks) (float64, bool) {
	return stats.Median(spreadRatios(seq))
}

func spreadRatios(seq []*detector.PoseLandmarks) []float64 {
	ratios := make([]float64, 0, len(seq))

	for _, p := range seq {
		if p == nil {
			continue
		}

		ls := p.Points[detector.LeftShoulder]
		rs := p.Points[detector.RightShoulder]
		lh := p.Points[detector.LeftHip]
		rh := p.Points[detector.RightHip]

		if min(ls.Visibility, rs.Visibility, lh.Visibility, rh.Visibility) < 0.5 {
			continue
		}

		torso := math.Abs((ls.Y+rs.Y)/2 - (lh.Y+rh.Y)/2)
		if torso == 0 {
			continue
		}

		r := math.Abs(ls.X-rs.X) / torso
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		ratios = append(ratios, r)
	}

	return ratios
}
