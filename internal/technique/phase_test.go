package technique

import (
	"testing"

	"github.com/ayusman/liftlens/internal/features"
)

func TestSelectPhase(t *testing.T) {
	low := frame(back(10))
	high := frame(back(50))
	unknown := frame()
	frames := []*features.FrameFeatures{low, high, unknown, high}

	t.Run("selects matching frames", func(t *testing.T) {
		got := SelectPhase(frames, above(backAngle, 30))
		if len(got) != 2 || got[0] != high || got[1] != high {
			t.Errorf("expected the two hinged frames, got %d frames", len(got))
		}
	})

	t.Run("falls back to all frames", func(t *testing.T) {
		got := SelectPhase(frames, above(backAngle, 80))
		if len(got) != len(frames) {
			t.Errorf("expected fallback to %d frames, got %d", len(frames), len(got))
		}
	})

	t.Run("absent metric never matches", func(t *testing.T) {
		got := SelectPhase([]*features.FrameFeatures{unknown, low}, below(backAngle, 20))
		if len(got) != 1 || got[0] != low {
			t.Errorf("expected only the measured frame, got %d frames", len(got))
		}
	})
}

func TestSelectPhaseMin(t *testing.T) {
	raised := frame(shoulders(90))
	rest := frame(shoulders(10))
	frames := concat(times(4, raised), times(6, rest))

	if got := SelectPhaseMin(frames, above(avgShoulder, 40), 4); len(got) != 4 {
		t.Errorf("expected 4 frames at the minimum, got %d", len(got))
	}
	if got := SelectPhaseMin(frames, above(avgShoulder, 40), 5); got != nil {
		t.Errorf("expected nil below the minimum, got %d frames", len(got))
	}
}

func TestMinPhaseCount(t *testing.T) {
	tests := []struct {
		n, floor int
		want     int
	}{
		{30, 10, 10},
		{200, 10, 10},
		{400, 10, 20},
		{401, 10, 21},
		{40, 5, 5},
	}

	for _, tt := range tests {
		if got := minPhaseCount(tt.n, tt.floor, 0.05); got != tt.want {
			t.Errorf("n=%d floor=%d: expected %d, got %d", tt.n, tt.floor, tt.want, got)
		}
	}
}

func TestWithin(t *testing.T) {
	pred := within(avgKnee, 45, 100)

	for _, v := range []float64{45, 70, 100} {
		if !pred(frame(knees(v))) {
			t.Errorf("%.0f should be inside the window", v)
		}
	}
	for _, v := range []float64{44.9, 100.1} {
		if pred(frame(knees(v))) {
			t.Errorf("%.1f should be outside the window", v)
		}
	}
}
