// Package render draws detected pose skeletons back onto exercise videos.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"github.com/ayusman/liftlens/internal/capture"
	"github.com/ayusman/liftlens/internal/detector"
)

// Drawing style
const (
	LineThickness = 2
	JointRadius   = 5
	// MinVisibility is the landmark visibility a joint needs to be drawn.
	MinVisibility = 0.5
	// Codec is the FourCC used for rendered output.
	Codec = "mp4v"
)

var (
	boneColor  = color.RGBA{G: 255, A: 255}
	jointColor = color.RGBA{R: 255, A: 255}
)

// Renderer produces an annotated copy of a video.
type Renderer interface {
	Render(videoPath string, seq []*detector.PoseLandmarks, outputPath string) error
}

// SkeletonRenderer overlays bones and joints on each frame that has a pose.
type SkeletonRenderer struct {
	// OpenSource opens the input video. Defaults to capture.NewVideoSource.
	OpenSource func(path string) capture.Source
}

// NewSkeletonRenderer creates a renderer reading videos from disk.
func NewSkeletonRenderer() *SkeletonRenderer {
	return &SkeletonRenderer{
		OpenSource: func(path string) capture.Source { return capture.NewVideoSource(path) },
	}
}

// Render reads videoPath, draws seq[i] onto frame i and writes the result to
// outputPath. Frames past the end of seq, or with a nil pose, are copied as is.
func (r *SkeletonRenderer) Render(videoPath string, seq []*detector.PoseLandmarks, outputPath string) (err error) {
	src := r.OpenSource(videoPath)
	if err := src.Open(); err != nil {
		return err
	}
	defer src.Close()

	info := src.Info()
	fps := info.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	var writer *gocv.VideoWriter
	defer func() {
		if writer != nil {
			if cerr := writer.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close skeleton video: %w", cerr)
			}
		}
	}()

	for i := 0; ; i++ {
		frame, rerr := src.ReadFrame()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read frame %d: %w", i, rerr)
		}

		if writer == nil {
			// Size comes from the first decoded frame; some containers
			// report zero dimensions.
			writer, err = gocv.VideoWriterFile(outputPath, Codec, fps, frame.Cols(), frame.Rows(), true)
			if err != nil {
				frame.Close()
				return fmt.Errorf("create skeleton video: %w", err)
			}
		}

		if i < len(seq) {
			DrawSkeleton(frame, seq[i])
		}
		werr := writer.Write(*frame)
		frame.Close()
		if werr != nil {
			return fmt.Errorf("write frame %d: %w", i, werr)
		}
	}

	if writer == nil {
		return fmt.Errorf("render %s: video has no frames", videoPath)
	}
	return nil
}

// DrawSkeleton draws the visible bones and joints of lm onto img in place.
// A nil pose leaves the image untouched.
func DrawSkeleton(img *gocv.Mat, lm *detector.PoseLandmarks) {
	if lm == nil || img.Empty() {
		return
	}

	w, h := img.Cols(), img.Rows()
	pixel := func(l detector.Landmark) image.Point {
		return image.Pt(int(l.X*float64(w)), int(l.Y*float64(h)))
	}

	for _, c := range detector.PoseConnections {
		a, b := lm.Points[c.A], lm.Points[c.B]
		if a.Visibility > MinVisibility && b.Visibility > MinVisibility {
			_ = gocv.Line(img, pixel(a), pixel(b), boneColor, LineThickness)
		}
	}

	for _, l := range lm.Points {
		if l.Visibility > MinVisibility {
			_ = gocv.Circle(img, pixel(l), JointRadius, jointColor, -1)
		}
	}
}
