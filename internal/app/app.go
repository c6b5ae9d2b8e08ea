// Package app ties pose detection, technique analysis, rendering and
// persistence together for the LiftLens service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/ayusman/liftlens/internal/capture"
	"github.com/ayusman/liftlens/internal/catalog"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/render"
	"github.com/ayusman/liftlens/internal/store"
	"github.com/ayusman/liftlens/internal/technique"
)

// DefaultMaxVideoDuration bounds uploaded videos when Config leaves it unset.
const DefaultMaxVideoDuration = 60 * time.Second

// ErrVideoTooLong is returned for videos longer than the configured maximum.
var ErrVideoTooLong = errors.New("video too long")

// Publisher receives every stored analysis, e.g. to push it to live clients.
type Publisher interface {
	Publish(a *store.Analysis)
}

// Config holds the collaborators of an App. Only Detector is required for
// video analysis; every other field may be left nil.
type Config struct {
	Store     *store.Store
	Detector  detector.Detector
	Renderer  render.Renderer
	Metrics   *metrics.Manager
	Publisher Publisher

	// OpenSource opens a video file. Defaults to capture.NewVideoSource.
	OpenSource func(path string) capture.Source

	FrontThreshold   float64
	MaxVideoDuration time.Duration
	// OutputDir receives uploads and rendered skeleton videos.
	OutputDir string
}

// VideoRequest asks for the analysis of one recorded set.
type VideoRequest struct {
	ExerciseID string
	VideoPath  string
	// Render requests a skeleton overlay video alongside the result.
	Render bool
}

// App is the service-level entry point for analyses.
type App struct {
	config   Config
	analyzer *Analyzer
}

// New creates an App from config.
func New(config Config) *App {
	if config.OpenSource == nil {
		config.OpenSource = func(path string) capture.Source { return capture.NewVideoSource(path) }
	}
	if config.MaxVideoDuration <= 0 {
		config.MaxVideoDuration = DefaultMaxVideoDuration
	}
	if config.OutputDir == "" {
		config.OutputDir = os.TempDir()
	}

	return &App{
		config:   config,
		analyzer: NewAnalyzer(config.FrontThreshold),
	}
}

// Analyzer returns the pipeline used by the App.
func (a *App) Analyzer() *Analyzer {
	return a.analyzer
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// AnalyzeVideo detects poses in the requested video, grades them and stores
// the result. Cancelling ctx stops detection between frames.
func (a *App) AnalyzeVideo(ctx context.Context, req VideoRequest) (*store.Analysis, error) {
	start := time.Now()

	var (
		seq    []*detector.PoseLandmarks
		result technique.Result
	)
	if _, ok := technique.Lookup(req.ExerciseID); !ok {
		result = technique.UnsupportedResult(req.ExerciseID)
	} else {
		var err error
		if seq, err = a.detectVideo(ctx, req.VideoPath); err != nil {
			return nil, err
		}
		result = a.analyzer.Analyze(seq, req.ExerciseID)
	}

	analysis := a.newAnalysis(req.ExerciseID, result, len(seq))
	analysis.VideoPath = req.VideoPath

	if req.Render && a.config.Renderer != nil && len(seq) > 0 {
		out := filepath.Join(a.config.OutputDir, analysis.ID+"_skeleton.mp4")
		if err := a.config.Renderer.Render(req.VideoPath, seq, out); err != nil {
			// The grade is still valid without the overlay.
			log.Warnf("render skeleton for %s: %s", analysis.ID, err)
		} else {
			analysis.SkeletonVideoPath = out
		}
	}

	if err := a.finish(analysis, "video", start); err != nil {
		return nil, err
	}
	return analysis, nil
}

// AnalyzeLandmarks grades a landmark sequence detected elsewhere and stores
// the result. No video is rendered.
func (a *App) AnalyzeLandmarks(ctx context.Context, exerciseID string, seq []*detector.PoseLandmarks) (*store.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	result := a.analyzer.Analyze(seq, exerciseID)
	analysis := a.newAnalysis(exerciseID, result, len(seq))

	if err := a.finish(analysis, "landmarks", start); err != nil {
		return nil, err
	}
	return analysis, nil
}

// DeleteAnalysis removes a stored analysis together with its video files when
// they live under OutputDir.
func (a *App) DeleteAnalysis(id string) error {
	if a.config.Store == nil {
		return store.ErrNotFound
	}

	analysis, err := a.config.Store.Analyses().GetByID(id)
	if err != nil {
		return err
	}
	if err := a.config.Store.Analyses().Delete(id); err != nil {
		return err
	}

	for _, path := range []string{analysis.VideoPath, analysis.SkeletonVideoPath} {
		if path == "" || !a.owns(path) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("remove %s: %s", path, err)
		}
	}
	return nil
}

// Close releases the detector and the store.
func (a *App) Close() error {
	var err error
	if a.config.Detector != nil {
		err = multierr.Append(err, a.config.Detector.Close())
	}
	if a.config.Store != nil {
		err = multierr.Append(err, a.config.Store.Close())
	}
	return err
}

func (a *App) owns(path string) bool {
	rel, err := filepath.Rel(a.config.OutputDir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// detectVideo runs the pose detector over every frame of the video at path.
func (a *App) detectVideo(ctx context.Context, path string) ([]*detector.PoseLandmarks, error) {
	if a.config.Detector == nil {
		return nil, errors.New("no pose detector configured")
	}

	src := a.config.OpenSource(path)
	if err := src.Open(); err != nil {
		return nil, err
	}
	defer src.Close()

	info := src.Info()
	if d := info.Duration(); d > a.config.MaxVideoDuration {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrVideoTooLong, d.Round(time.Second), a.config.MaxVideoDuration)
	}

	// The header frame count may be missing or wrong, so the limit is also
	// enforced on the frames actually decoded.
	fps := info.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	maxSeconds := a.config.MaxVideoDuration.Seconds()

	seq := make([]*detector.PoseLandmarks, 0, max(info.FrameCount, 0))
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", i, err)
		}

		if float64(i+1)/fps > maxSeconds {
			frame.Close()
			return nil, fmt.Errorf("%w: more than %d frames at %.1f fps exceeds %s",
				ErrVideoTooLong, i, fps, a.config.MaxVideoDuration)
		}

		pose, err := a.config.Detector.Detect(frame)
		frame.Close()
		if err != nil {
			return nil, fmt.Errorf("detect pose in frame %d: %w", i, err)
		}
		seq = append(seq, pose)
	}

	withWorld := 0
	for _, p := range seq {
		if p.HasWorld() {
			withWorld++
		}
	}
	log.Debugf("detected a pose in %d of %d frames of %s (%d with world coordinates)",
		detector.CountDetected(seq), len(seq), path, withWorld)
	return seq, nil
}

func (a *App) newAnalysis(exerciseID string, result technique.Result, frames int) *store.Analysis {
	analysis := &store.Analysis{
		ID:         uuid.New().String(),
		ExerciseID: exerciseID,
		Result:     result,
		FrameCount: frames,
		CreatedAt:  time.Now().UTC(),
	}
	if e, ok := catalog.Get(exerciseID); ok {
		analysis.MuscleGroup = e.MuscleGroup
	}
	return analysis
}

// finish persists, measures and publishes a completed analysis.
func (a *App) finish(analysis *store.Analysis, input string, start time.Time) error {
	if a.config.Store != nil {
		if err := a.config.Store.Analyses().Create(analysis); err != nil {
			return fmt.Errorf("store analysis: %w", err)
		}
	}

	if m := a.config.Metrics; m != nil {
		m.CounterAnalyses.WithLabelValues(analysis.ExerciseID, string(analysis.Result.Overall)).Inc()
		m.HistAnalysisDuration.WithLabelValues(input).Observe(time.Since(start).Seconds())
		m.HistFramesPerAnalysis.Observe(float64(analysis.FrameCount))
		for _, item := range analysis.Result.Feedback {
			m.CounterFeedbackItems.WithLabelValues(item.Aspect, string(item.Status)).Inc()
		}
		if _, rejected := analysis.Result.Item(technique.AspectCameraAngle); rejected {
			m.CounterCameraRejections.WithLabelValues(analysis.ExerciseID).Inc()
		}
	}

	log.WithFields(log.Fields{
		"id":       analysis.ID,
		"exercise": analysis.ExerciseID,
		"score":    analysis.Result.Overall,
		"frames":   analysis.FrameCount,
	}).Info("analysis complete")

	if a.config.Publisher != nil {
		a.config.Publisher.Publish(analysis)
	}
	return nil
}
