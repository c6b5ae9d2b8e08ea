// Package fixtures builds synthetic landmark sequences for tests.
package fixtures

import (
	"math"

	"github.com/ayusman/liftlens/internal/detector"
)

// Standing posture used at the start and end of every rep.
const (
	StandingKnee = 175.0
	StandingBack = 5.0
)

// Segment lengths in normalized image units.
const (
	shin  = 0.2
	thigh = 0.2
	torso = 0.3
	arm   = 0.15
	// sideOffset separates left and right joints in a side view.
	sideOffset = 0.005
)

// SidePose returns a pose filmed from the lifter's side with the given knee
// angle (hip-knee-ankle) and torso lean from vertical, both in degrees. The
// shins are vertical and the lifter faces +x.
func SidePose(knee, back float64) *detector.PoseLandmarks {
	kneeRad := knee * math.Pi / 180
	backRad := back * math.Pi / 180

	ankle := [2]float64{0.5, 0.9}
	kneePt := [2]float64{ankle[0], ankle[1] - shin}
	hip := [2]float64{kneePt[0] - thigh*math.Sin(kneeRad), kneePt[1] + thigh*math.Cos(kneeRad)}
	shoulder := [2]float64{hip[0] + torso*math.Sin(backRad), hip[1] - torso*math.Cos(backRad)}
	elbow := [2]float64{shoulder[0], shoulder[1] + arm}
	wrist := [2]float64{elbow[0], elbow[1] + arm}
	head := [2]float64{shoulder[0] + 0.03, shoulder[1] - 0.1}
	foot := [2]float64{ankle[0] + 0.05, ankle[1] + 0.02}
	heel := [2]float64{ankle[0] - 0.02, ankle[1] + 0.02}

	var p detector.PoseLandmarks
	for i := range p.Points {
		p.Points[i] = landmark(head, 0)
	}

	pairs := []struct {
		left, right int
		at          [2]float64
	}{
		{detector.LeftShoulder, detector.RightShoulder, shoulder},
		{detector.LeftElbow, detector.RightElbow, elbow},
		{detector.LeftWrist, detector.RightWrist, wrist},
		{detector.LeftPinky, detector.RightPinky, wrist},
		{detector.LeftIndex, detector.RightIndex, wrist},
		{detector.LeftThumb, detector.RightThumb, wrist},
		{detector.LeftHip, detector.RightHip, hip},
		{detector.LeftKnee, detector.RightKnee, kneePt},
		{detector.LeftAnkle, detector.RightAnkle, ankle},
		{detector.LeftHeel, detector.RightHeel, heel},
		{detector.LeftFootIndex, detector.RightFootIndex, foot},
	}
	for _, pr := range pairs {
		p.Points[pr.left] = landmark(pr.at, -1)
		p.Points[pr.right] = landmark(pr.at, 1)
	}

	return &p
}

// landmark places a joint at pt, nudged by side (-1 left, +1 right, 0 centre).
// World coordinates follow the image: x is forward depth, y is up.
func landmark(pt [2]float64, side float64) detector.Landmark {
	return detector.Landmark{
		X:          pt[0] + side*sideOffset,
		Y:          pt[1],
		Visibility: 0.95,
		World: &detector.Point3D{
			X: side * 0.1,
			Y: -pt[1],
			Z: pt[0] - 0.5,
		},
	}
}

// SquatRep returns one side-view squat of n frames: the lifter descends from
// standing to bottomKnee with bottomBack lean and rises again. For odd n the
// middle frame is exactly at the bottom.
func SquatRep(n int, bottomKnee, bottomBack float64) []*detector.PoseLandmarks {
	seq := make([]*detector.PoseLandmarks, n)
	for i := range seq {
		t := 0.0
		if n > 1 {
			t = math.Sin(math.Pi * float64(i) / float64(n-1))
		}
		knee := StandingKnee + (bottomKnee-StandingKnee)*t
		back := StandingBack + (bottomBack-StandingBack)*t
		seq[i] = SidePose(knee, back)
	}
	return seq
}

// FrontStanding returns n frames of a lifter standing square to the camera.
func FrontStanding(n int) []*detector.PoseLandmarks {
	seq := make([]*detector.PoseLandmarks, n)
	for i := range seq {
		p := detector.StandingFrontLandmarks()
		seq[i] = &p
	}
	return seq
}

// WithGaps returns a copy of seq where every nth frame has no pose.
func WithGaps(seq []*detector.PoseLandmarks, every int) []*detector.PoseLandmarks {
	out := make([]*detector.PoseLandmarks, len(seq))
	copy(out, seq)
	if every <= 0 {
		return out
	}
	for i := every - 1; i < len(out); i += every {
		out[i] = nil
	}
	return out
}

// Frames converts seq to the wire form accepted by the analyses API: one
// landmark list per frame, nil where no pose was detected.
func Frames(seq []*detector.PoseLandmarks) [][]detector.Landmark {
	out := make([][]detector.Landmark, len(seq))
	for i, p := range seq {
		if p != nil {
			out[i] = p.Points[:]
		}
	}
	return out
}
