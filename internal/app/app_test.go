package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gocv.io/x/gocv"

	"github.com/ayusman/liftlens/internal/capture"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/store"
	"github.com/ayusman/liftlens/internal/technique"
)

func repeat(p detector.PoseLandmarks, n int) []*detector.PoseLandmarks {
	seq := make([]*detector.PoseLandmarks, n)
	for i := range seq {
		c := p
		seq[i] = &c
	}
	return seq
}

// unknownLengthSource hides the frame count, as some containers do.
type unknownLengthSource struct {
	*capture.MockSource
}

func (s unknownLengthSource) Info() capture.Info {
	info := s.MockSource.Info()
	info.FrameCount = 0
	return info
}

func blankFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []*store.Analysis
}

func (p *recordingPublisher) Publish(a *store.Analysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, a)
}

type fakeRenderer struct {
	calls int
	seq   []*detector.PoseLandmarks
	err   error
}

func (r *fakeRenderer) Render(videoPath string, seq []*detector.PoseLandmarks, outputPath string) error {
	r.calls++
	r.seq = seq
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(outputPath, []byte("video"), 0o600)
}

func TestAnalyzer_Unsupported(t *testing.T) {
	a := NewAnalyzer(0)

	got := a.Analyze(repeat(detector.StandingSideLandmarks(), 20), "arnold_press")

	if got.Overall != technique.Poor || len(got.Feedback) != 1 {
		t.Fatalf("expected a single poor item, got %+v", got)
	}
	item := got.Feedback[0]
	if item.Aspect != technique.AspectGeneral || item.Status != technique.Error {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.Message != "Exercise 'arnold_press' is not yet supported." {
		t.Errorf("unexpected message: %q", item.Message)
	}
}

func TestAnalyzer_CameraRejection(t *testing.T) {
	a := NewAnalyzer(0)

	tests := []struct {
		name     string
		exercise string
		seq      []*detector.PoseLandmarks
	}{
		{"front view for side exercise", "squat", repeat(detector.StandingFrontLandmarks(), 20)},
		{"side view for front exercise", "upright_row", repeat(detector.StandingSideLandmarks(), 20)},
		{"too few frames", "squat", repeat(detector.StandingSideLandmarks(), 9)},
		{"no pose at all", "deadlift", make([]*detector.PoseLandmarks, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.seq, tt.exercise)
			if len(got.Feedback) != 1 {
				t.Fatalf("expected one item, got %+v", got.Feedback)
			}
			item := got.Feedback[0]
			if item.Aspect != technique.AspectCameraAngle || item.Status != technique.Error {
				t.Errorf("expected camera_angle error, got %+v", item)
			}
			if item.Message == "" {
				t.Error("rejection message should not be empty")
			}
		})
	}
}

func TestAnalyzer_PassesCameraCheck(t *testing.T) {
	a := NewAnalyzer(0)

	tests := []struct {
		exercise string
		seq      []*detector.PoseLandmarks
	}{
		{"squat", repeat(detector.StandingSideLandmarks(), 20)},
		{"upright_row", repeat(detector.StandingFrontLandmarks(), 20)},
		{"pull_up", repeat(detector.StandingFrontLandmarks(), 20)},
		{"pull_up", repeat(detector.StandingSideLandmarks(), 20)},
		// Bench variants never run the view check.
		{"bench_press", repeat(detector.StandingFrontLandmarks(), 3)},
		{"incline_bench_press", repeat(detector.StandingFrontLandmarks(), 3)},
	}

	for _, tt := range tests {
		got := a.Analyze(tt.seq, tt.exercise)
		if _, ok := got.Item(technique.AspectCameraAngle); ok {
			t.Errorf("%s: unexpected camera rejection: %+v", tt.exercise, got.Feedback)
		}
		if len(got.Feedback) == 0 {
			t.Errorf("%s: expected engine feedback", tt.exercise)
		}
	}
}

func TestAnalyzer_FrontThreshold(t *testing.T) {
	front := detector.StandingFrontLandmarks()
	seq := repeat(front, 20)

	if got := NewAnalyzer(0.9).Analyze(seq, "upright_row"); got.Feedback[0].Aspect != technique.AspectCameraAngle {
		t.Errorf("a 0.9 front threshold should reject the fixture, got %+v", got.Feedback)
	}
	if got := NewAnalyzer(0.5).Analyze(seq, "upright_row"); got.Feedback[0].Aspect == technique.AspectCameraAngle {
		t.Errorf("the default threshold should accept the fixture, got %+v", got.Feedback)
	}
}

func TestApp_AnalyzeLandmarks(t *testing.T) {
	s := newTestStore(t)
	m, _ := metrics.NewTestManagerAndRegistry()
	pub := &recordingPublisher{}

	a := New(Config{Store: s, Metrics: m, Publisher: pub})

	analysis, err := a.AnalyzeLandmarks(context.Background(), "squat", repeat(detector.StandingFrontLandmarks(), 20))
	if err != nil {
		t.Fatalf("AnalyzeLandmarks() error = %v", err)
	}

	if analysis.ID == "" || analysis.MuscleGroup != "legs" || analysis.FrameCount != 20 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}

	stored, err := s.Analyses().GetByID(analysis.ID)
	if err != nil {
		t.Fatalf("analysis not stored: %v", err)
	}
	if stored.Result.Overall != analysis.Result.Overall {
		t.Errorf("stored score %s, want %s", stored.Result.Overall, analysis.Result.Overall)
	}

	if len(pub.published) != 1 || pub.published[0].ID != analysis.ID {
		t.Errorf("expected analysis to be published once, got %d", len(pub.published))
	}

	if got := testutil.ToFloat64(m.CounterAnalyses.WithLabelValues("squat", "poor")); got != 1 {
		t.Errorf("analyses counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CounterCameraRejections.WithLabelValues("squat")); got != 1 {
		t.Errorf("camera rejection counter = %v, want 1", got)
	}
}

func TestApp_AnalyzeLandmarks_Cancelled(t *testing.T) {
	a := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.AnalyzeLandmarks(ctx, "squat", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestApp_AnalyzeVideo(t *testing.T) {
	frames := blankFrames(t, 15)
	det := detector.NewMockDetector()
	side := detector.StandingSideLandmarks()
	poses := repeat(side, 15)
	poses[0] = nil
	det.SetPoses(poses)

	outDir := t.TempDir()
	renderer := &fakeRenderer{}
	s := newTestStore(t)

	a := New(Config{
		Store:      s,
		Detector:   det,
		Renderer:   renderer,
		OutputDir:  outDir,
		OpenSource: func(string) capture.Source { return capture.NewMockSource(frames, 30) },
	})

	analysis, err := a.AnalyzeVideo(context.Background(), VideoRequest{
		ExerciseID: "squat",
		VideoPath:  filepath.Join(outDir, "set.mp4"),
		Render:     true,
	})
	if err != nil {
		t.Fatalf("AnalyzeVideo() error = %v", err)
	}

	if analysis.FrameCount != 15 {
		t.Errorf("FrameCount = %d, want 15", analysis.FrameCount)
	}
	if _, ok := analysis.Result.Item(technique.AspectCameraAngle); ok {
		t.Errorf("side fixture should pass the camera check: %+v", analysis.Result.Feedback)
	}
	if renderer.calls != 1 || len(renderer.seq) != 15 || renderer.seq[0] != nil {
		t.Errorf("renderer should receive the full sequence, got %d calls", renderer.calls)
	}
	if analysis.SkeletonVideoPath != filepath.Join(outDir, analysis.ID+"_skeleton.mp4") {
		t.Errorf("unexpected skeleton path %q", analysis.SkeletonVideoPath)
	}

	stored, err := s.Analyses().GetByID(analysis.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.SkeletonVideoPath != analysis.SkeletonVideoPath {
		t.Errorf("stored skeleton path %q", stored.SkeletonVideoPath)
	}
}

func TestApp_AnalyzeVideo_RenderFailureKeepsResult(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetPoses(repeat(detector.StandingSideLandmarks(), 12))
	frames := blankFrames(t, 12)

	a := New(Config{
		Detector:   det,
		Renderer:   &fakeRenderer{err: errors.New("no encoder")},
		OpenSource: func(string) capture.Source { return capture.NewMockSource(frames, 30) },
	})

	analysis, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat", VideoPath: "x.mp4", Render: true})
	if err != nil {
		t.Fatalf("AnalyzeVideo() error = %v", err)
	}
	if analysis.SkeletonVideoPath != "" {
		t.Errorf("expected no skeleton path, got %q", analysis.SkeletonVideoPath)
	}
}

func TestApp_AnalyzeVideo_Errors(t *testing.T) {
	frames := blankFrames(t, 5)
	source := func(string) capture.Source { return capture.NewMockSource(frames, 30) }

	t.Run("detector error", func(t *testing.T) {
		det := detector.NewMockDetector()
		boom := errors.New("model crashed")
		det.SetError(boom)

		a := New(Config{Detector: det, OpenSource: source})
		if _, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"}); !errors.Is(err, boom) {
			t.Errorf("expected wrapped detector error, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		a := New(Config{Detector: detector.NewMockDetector(), OpenSource: source})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := a.AnalyzeVideo(ctx, VideoRequest{ExerciseID: "squat"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		long := blankFrames(t, 61)
		a := New(Config{
			Detector:   detector.NewMockDetector(),
			OpenSource: func(string) capture.Source { return capture.NewMockSource(long, 1) },
		})

		if _, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"}); !errors.Is(err, ErrVideoTooLong) {
			t.Errorf("expected ErrVideoTooLong, got %v", err)
		}
	})

	t.Run("too long without frame count", func(t *testing.T) {
		long := blankFrames(t, 61)
		a := New(Config{
			Detector: detector.NewMockDetector(),
			OpenSource: func(string) capture.Source {
				return unknownLengthSource{capture.NewMockSource(long, 1)}
			},
		})

		if _, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"}); !errors.Is(err, ErrVideoTooLong) {
			t.Errorf("expected ErrVideoTooLong, got %v", err)
		}
	})

	t.Run("too long without frame rate", func(t *testing.T) {
		long := blankFrames(t, 61)
		a := New(Config{
			Detector:         detector.NewMockDetector(),
			MaxVideoDuration: 2 * time.Second,
			OpenSource: func(string) capture.Source {
				return unknownLengthSource{capture.NewMockSource(long, 0)}
			},
		})

		if _, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"}); !errors.Is(err, ErrVideoTooLong) {
			t.Errorf("expected ErrVideoTooLong at the default frame rate, got %v", err)
		}
	})

	t.Run("at the limit without frame count", func(t *testing.T) {
		exact := blankFrames(t, 60)
		a := New(Config{
			Detector: detector.NewMockDetector(),
			OpenSource: func(string) capture.Source {
				return unknownLengthSource{capture.NewMockSource(exact, 1)}
			},
		})

		analysis, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"})
		if err != nil {
			t.Fatalf("AnalyzeVideo() error = %v", err)
		}
		if analysis.FrameCount != 60 {
			t.Errorf("expected 60 frames, got %d", analysis.FrameCount)
		}
	})

	t.Run("no detector", func(t *testing.T) {
		a := New(Config{OpenSource: source})
		if _, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "squat"}); err == nil {
			t.Error("expected error without a detector")
		}
	})
}

func TestApp_AnalyzeVideo_UnsupportedSkipsDetection(t *testing.T) {
	a := New(Config{
		Detector: detector.NewMockDetector(),
		OpenSource: func(string) capture.Source {
			t.Error("video should not be opened for an unsupported exercise")
			return capture.NewMockSource(nil, 30)
		},
	})

	analysis, err := a.AnalyzeVideo(context.Background(), VideoRequest{ExerciseID: "bulgarian_split_squat", Render: true})
	if err != nil {
		t.Fatalf("AnalyzeVideo() error = %v", err)
	}
	if analysis.Result.Feedback[0].Aspect != technique.AspectGeneral {
		t.Errorf("expected unsupported result, got %+v", analysis.Result)
	}
}

func TestApp_DeleteAnalysis(t *testing.T) {
	s := newTestStore(t)
	outDir := t.TempDir()
	a := New(Config{Store: s, OutputDir: outDir})

	owned := filepath.Join(outDir, "set.mp4")
	foreign := filepath.Join(t.TempDir(), "skeleton.mp4")
	for _, p := range []string{owned, foreign} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	analysis := &store.Analysis{
		ID:                "a1",
		ExerciseID:        "squat",
		Result:            technique.NoPoseResult(),
		VideoPath:         owned,
		SkeletonVideoPath: foreign,
		CreatedAt:         time.Now(),
	}
	if err := s.Analyses().Create(analysis); err != nil {
		t.Fatal(err)
	}

	if err := a.DeleteAnalysis("a1"); err != nil {
		t.Fatalf("DeleteAnalysis() error = %v", err)
	}
	if _, err := os.Stat(owned); !os.IsNotExist(err) {
		t.Error("upload under the output dir should be removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("files outside the output dir must be left alone")
	}
	if err := a.DeleteAnalysis("a1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

type closingDetector struct {
	*detector.MockDetector
	err error
}

func (d closingDetector) Close() error { return d.err }

func TestApp_Close(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("still running")

	a := New(Config{Store: s, Detector: closingDetector{detector.NewMockDetector(), boom}})
	if err := a.Close(); !errors.Is(err, boom) {
		t.Errorf("expected detector close error, got %v", err)
	}

	if err := New(Config{}).Close(); err != nil {
		t.Errorf("Close() with no collaborators = %v", err)
	}
}
