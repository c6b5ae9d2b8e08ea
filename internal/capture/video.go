// Package capture reads frames from recorded exercise videos using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// DefaultFPS is assumed when a container does not report a frame rate.
const DefaultFPS = 30.0

// ErrVideoNotOpen is returned when reading from a source that is not open.
var ErrVideoNotOpen = errors.New("video is not open")

// Info describes the stream of an opened video.
type Info struct {
	FPS        float64
	Width      int
	Height     int
	FrameCount int
}

// Duration estimates the video length from its frame count and rate.
func (i Info) Duration() time.Duration {
	if i.FPS <= 0 || i.FrameCount <= 0 {
		return 0
	}
	return time.Duration(float64(i.FrameCount) / i.FPS * float64(time.Second))
}

// Source defines the interface for frame sources.
type Source interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame, or io.EOF once the video is exhausted.
	// The caller is responsible for closing the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	Info() Info
	IsOpen() bool
}

// VideoSource decodes frames sequentially from a video file.
type VideoSource struct {
	path    string
	capture *gocv.VideoCapture
	info    Info
	mu      sync.Mutex
	running bool
}

// NewVideoSource creates a source for the video at path. The file is not
// touched until Open is called.
func NewVideoSource(path string) *VideoSource {
	return &VideoSource{path: path}
}

// Open opens the video file and reads its stream properties.
func (v *VideoSource) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: unreadable container", v.path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = DefaultFPS
	}
	v.info = Info{
		FPS:        fps,
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	v.capture = capture
	v.running = true

	return nil
}

// Close releases the underlying capture.
func (v *VideoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// ReadFrame decodes the next frame.
func (v *VideoSource) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return nil, ErrVideoNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}

	return &mat, nil
}

// Info returns the stream properties read by Open.
func (v *VideoSource) Info() Info {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.info
}

// IsOpen returns true if the video is currently open.
func (v *VideoSource) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.running
}

// SupportedExtensions lists the accepted upload container extensions.
var SupportedExtensions = []string{".mp4", ".mov", ".avi", ".mkv"}
