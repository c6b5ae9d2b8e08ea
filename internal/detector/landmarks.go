// Package detector provides pose detection interfaces and types for exercise analysis.
package detector

import (
	"errors"
	"fmt"
)

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// ErrLandmarkCount is returned when a frame does not carry exactly NumLandmarks points.
var ErrLandmarkCount = errors.New("invalid landmark count")

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a single tracked body point.
// X and Y are normalized image coordinates in [0,1] (Y grows downward).
// World holds metric world coordinates when the detector provides them.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Visibility float64  `json:"visibility"`
	World      *Point3D `json:"world,omitempty"`
}

// PoseLandmarks represents the 33 body landmarks detected by MediaPipe Pose for one frame.
type PoseLandmarks struct {
	Points [NumLandmarks]Landmark `json:"points"`
}

// NewPoseLandmarks builds a frame from a slice of landmarks.
// It returns ErrLandmarkCount if the slice does not hold exactly NumLandmarks entries.
func NewPoseLandmarks(points []Landmark) (*PoseLandmarks, error) {
	if len(points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}

	p := &PoseLandmarks{}
	copy(p.Points[:], points)
	return p, nil
}

// HasWorld reports whether every landmark carries world coordinates.
func (p *PoseLandmarks) HasWorld() bool {
	if p == nil {
		return false
	}
	for i := range p.Points {
		if p.Points[i].World == nil {
			return false
		}
	}
	return true
}

// Midpoint averages two landmarks. The visibility of the result is the
// minimum of the pair; world coordinates are averaged only if both have them.
func Midpoint(a, b Landmark) Landmark {
	m := Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Visibility: min(a.Visibility, b.Visibility),
	}

	if a.World != nil && b.World != nil {
		m.World = &Point3D{
			X: (a.World.X + b.World.X) / 2,
			Y: (a.World.Y + b.World.Y) / 2,
			Z: (a.World.Z + b.World.Z) / 2,
		}
	}

	return m
}

// CountDetected returns the number of frames with a detected pose.
func CountDetected(seq []*PoseLandmarks) int {
	n := 0
	for _, f := range seq {
		if f != nil {
			n++
		}
	}
	return n
}

// Connection is a pair of landmark indices joined by a bone in the skeleton.
type Connection struct {
	A, B int
}

// PoseConnections lists the skeleton edges drawn between MediaPipe Pose landmarks.
var PoseConnections = []Connection{
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{MouthLeft, MouthRight},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{LeftWrist, LeftPinky}, {LeftWrist, LeftIndex}, {LeftWrist, LeftThumb}, {LeftPinky, LeftIndex},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{RightWrist, RightPinky}, {RightWrist, RightIndex}, {RightWrist, RightThumb}, {RightPinky, RightIndex},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
	{LeftHip, LeftKnee}, {RightHip, RightKnee},
	{LeftKnee, LeftAnkle}, {RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel}, {RightAnkle, RightHeel},
	{LeftHeel, LeftFootIndex}, {RightHeel, RightFootIndex},
	{LeftAnkle, LeftFootIndex}, {RightAnkle, RightFootIndex},
}
