package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a configured sequence of poses, one per Detect call.
type MockDetector struct {
	poses []*PoseLandmarks
	next  int
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPoses sets the poses that will be returned by successive Detect calls.
// A nil entry simulates a frame without a detected person.
func (m *MockDetector) SetPoses(poses []*PoseLandmarks) {
	m.poses = poses
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the next pre-configured pose or error.
// Once the sequence is exhausted it keeps returning nil.
func (m *MockDetector) Detect(frame *gocv.Mat) (*PoseLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.next >= len(m.poses) {
		return nil, nil
	}
	p := m.poses[m.next]
	m.next++
	return p, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingSideLandmarks returns a preset pose of a person standing upright,
// filmed from their left side. Left and right joints nearly overlap in x.
func StandingSideLandmarks() PoseLandmarks {
	var p PoseLandmarks
	for i := range p.Points {
		p.Points[i] = Landmark{X: 0.5, Y: 0.2, Visibility: 0.9, World: &Point3D{Y: -0.6}}
	}

	set := func(idx int, x, y float64, w Point3D) {
		p.Points[idx] = Landmark{X: x, Y: y, Visibility: 0.95, World: &w}
	}

	set(LeftShoulder, 0.50, 0.30, Point3D{X: -0.18, Y: -0.50, Z: 0.00})
	set(RightShoulder, 0.51, 0.30, Point3D{X: 0.18, Y: -0.50, Z: 0.00})
	set(LeftElbow, 0.50, 0.43, Point3D{X: -0.18, Y: -0.22, Z: -0.03})
	set(RightElbow, 0.51, 0.43, Point3D{X: 0.18, Y: -0.22, Z: -0.03})
	set(LeftWrist, 0.50, 0.55, Point3D{X: -0.18, Y: 0.02, Z: -0.04})
	set(RightWrist, 0.51, 0.55, Point3D{X: 0.18, Y: 0.02, Z: -0.04})
	set(LeftHip, 0.50, 0.55, Point3D{X: -0.10, Y: 0.00, Z: 0.00})
	set(RightHip, 0.51, 0.55, Point3D{X: 0.10, Y: 0.00, Z: 0.00})
	set(LeftKnee, 0.50, 0.75, Point3D{X: -0.10, Y: 0.42, Z: 0.00})
	set(RightKnee, 0.51, 0.75, Point3D{X: 0.10, Y: 0.42, Z: 0.00})
	set(LeftAnkle, 0.50, 0.95, Point3D{X: -0.10, Y: 0.84, Z: 0.00})
	set(RightAnkle, 0.51, 0.95, Point3D{X: 0.10, Y: 0.84, Z: 0.00})

	return p
}

// StandingFrontLandmarks returns a preset pose of a person standing upright,
// facing the camera. Shoulders are spread apart in x.
func StandingFrontLandmarks() PoseLandmarks {
	p := StandingSideLandmarks()

	shift := func(left, right int, half float64) {
		p.Points[left].X = 0.5 + half
		p.Points[right].X = 0.5 - half
	}

	shift(LeftShoulder, RightShoulder, 0.10)
	shift(LeftElbow, RightElbow, 0.11)
	shift(LeftWrist, RightWrist, 0.11)
	shift(LeftHip, RightHip, 0.07)
	shift(LeftKnee, RightKnee, 0.07)
	shift(LeftAnkle, RightAnkle, 0.07)

	return p
}

// WithoutWorld returns a copy of the pose with world coordinates removed.
func WithoutWorld(p PoseLandmarks) PoseLandmarks {
	for i := range p.Points {
		p.Points[i].World = nil
	}
	return p
}
