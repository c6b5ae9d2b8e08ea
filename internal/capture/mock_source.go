package capture

import (
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// MockSource plays back in-memory frames for testing
type MockSource struct {
	frames  []*gocv.Mat
	info    Info
	index   int
	mu      sync.Mutex
	running bool
}

func NewMockSource(frames []*gocv.Mat, fps float64) *MockSource {
	s := &MockSource{frames: frames}
	s.info = Info{FPS: fps, FrameCount: len(frames)}
	if len(frames) > 0 && frames[0] != nil {
		s.info.Width = frames[0].Cols()
		s.info.Height = frames[0].Rows()
	}
	return s
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.index = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *MockSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrVideoNotOpen
	}
	if s.index >= len(s.frames) {
		return nil, io.EOF
	}

	// Clone so callers may close what they get back
	frame := s.frames[s.index].Clone()
	s.index++

	return &frame, nil
}

func (s *MockSource) Info() Info { return s.info }

func (s *MockSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
