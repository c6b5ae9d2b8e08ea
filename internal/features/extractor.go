package features

import "github.com/ayusman/liftlens/internal/detector"

// FrameFeatures holds the joint angles derived from one frame, in degrees.
// A nil field means the measure could not be computed for that frame.
type FrameFeatures struct {
	KneeAngleLeft      *float64 `json:"knee_angle_left,omitempty"`
	KneeAngleRight     *float64 `json:"knee_angle_right,omitempty"`
	HipAngleLeft       *float64 `json:"hip_angle_left,omitempty"`
	HipAngleRight      *float64 `json:"hip_angle_right,omitempty"`
	ElbowAngleLeft     *float64 `json:"elbow_angle_left,omitempty"`
	ElbowAngleRight    *float64 `json:"elbow_angle_right,omitempty"`
	ShoulderAngleLeft  *float64 `json:"shoulder_angle_left,omitempty"`
	ShoulderAngleRight *float64 `json:"shoulder_angle_right,omitempty"`
	BackAngle          *float64 `json:"back_angle,omitempty"`

	// World-space measures, present only when the detector reported 3D data.
	ElbowFlare3D *float64 `json:"elbow_flare_3d,omitempty"`
	BackLean3D   *float64 `json:"back_lean_3d,omitempty"`
}

// joint names the three landmarks whose middle point is the vertex of an angle.
type joint struct {
	a, b, c int
}

var (
	leftKnee      = joint{detector.LeftHip, detector.LeftKnee, detector.LeftAnkle}
	rightKnee     = joint{detector.RightHip, detector.RightKnee, detector.RightAnkle}
	leftHip       = joint{detector.LeftShoulder, detector.LeftHip, detector.LeftKnee}
	rightHip      = joint{detector.RightShoulder, detector.RightHip, detector.RightKnee}
	leftElbow     = joint{detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist}
	rightElbow    = joint{detector.RightShoulder, detector.RightElbow, detector.RightWrist}
	leftShoulder  = joint{detector.LeftHip, detector.LeftShoulder, detector.LeftElbow}
	rightShoulder = joint{detector.RightHip, detector.RightShoulder, detector.RightElbow}
)

func (j joint) angle(p *detector.PoseLandmarks) *float64 {
	return Angle(p.Points[j.a], p.Points[j.b], p.Points[j.c])
}

// Extractor converts landmark frames into FrameFeatures.
// It holds no state and is safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes the features of a single frame.
// A nil frame (no pose detected) yields nil.
func (e *Extractor) Extract(p *detector.PoseLandmarks) *FrameFeatures {
	if p == nil {
		return nil
	}

	pts := &p.Points
	midShoulder := detector.Midpoint(pts[detector.LeftShoulder], pts[detector.RightShoulder])
	midHip := detector.Midpoint(pts[detector.LeftHip], pts[detector.RightHip])

	return &FrameFeatures{
		KneeAngleLeft:      leftKnee.angle(p),
		KneeAngleRight:     rightKnee.angle(p),
		HipAngleLeft:       leftHip.angle(p),
		HipAngleRight:      rightHip.angle(p),
		ElbowAngleLeft:     leftElbow.angle(p),
		ElbowAngleRight:    rightElbow.angle(p),
		ShoulderAngleLeft:  leftShoulder.angle(p),
		ShoulderAngleRight: rightShoulder.angle(p),
		BackAngle:          BackAngle(midShoulder, midHip),
		ElbowFlare3D: Average(
			ElbowFlare3D(pts[detector.LeftShoulder], pts[detector.LeftElbow]),
			ElbowFlare3D(pts[detector.RightShoulder], pts[detector.RightElbow]),
		),
		BackLean3D: BackLean3D(midShoulder, midHip),
	}
}

// ExtractSequence maps Extract over a sequence, preserving length and order.
func (e *Extractor) ExtractSequence(seq []*detector.PoseLandmarks) []*FrameFeatures {
	out := make([]*FrameFeatures, len(seq))
	for i, p := range seq {
		out[i] = e.Extract(p)
	}
	return out
}

// Avg accessors used by the rule engines. Each returns the left/right average
// of the corresponding joint, or nil when neither side was measured.

// AvgKnee returns the averaged knee angle.
func (f *FrameFeatures) AvgKnee() *float64 { return Average(f.KneeAngleLeft, f.KneeAngleRight) }

// AvgHip returns the averaged hip angle.
func (f *FrameFeatures) AvgHip() *float64 { return Average(f.HipAngleLeft, f.HipAngleRight) }

// AvgElbow returns the averaged elbow angle.
func (f *FrameFeatures) AvgElbow() *float64 { return Average(f.ElbowAngleLeft, f.ElbowAngleRight) }

// AvgShoulder returns the averaged shoulder angle.
func (f *FrameFeatures) AvgShoulder() *float64 {
	return Average(f.ShoulderAngleLeft, f.ShoulderAngleRight)
}
