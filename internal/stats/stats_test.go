package stats

import (
	"slices"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"single", []float64{42}, 42},
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count averages middle pair", []float64{10, 40, 20, 30}, 25},
		{"duplicates", []float64{5, 5, 5, 1}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.in)
			if !ok {
				t.Fatal("expected ok")
			}
			if got != tt.want {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		if _, ok := Median(nil); ok {
			t.Error("expected ok=false for empty sample")
		}
	})

	t.Run("does not reorder input", func(t *testing.T) {
		in := []float64{3, 1, 2}
		Median(in)
		if !slices.Equal(in, []float64{3, 1, 2}) {
			t.Errorf("input was modified: %v", in)
		}
	})
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.5, 60},
		{0.85, 90},
		{0.9, 100},
		{1, 100},
	}

	for _, tt := range tests {
		got, ok := Percentile(xs, tt.p)
		if !ok {
			t.Fatalf("p=%v: expected ok", tt.p)
		}
		if got != tt.want {
			t.Errorf("p=%v: expected %f, got %f", tt.p, tt.want, got)
		}
	}

	if _, ok := Percentile(nil, 0.9); ok {
		t.Error("expected ok=false for empty sample")
	}
}

func TestMinMax(t *testing.T) {
	xs := []float64{70, 30, 95, 30, 95}

	if got, _ := Min(xs); got != 30 {
		t.Errorf("expected min 30, got %f", got)
	}
	if got, _ := Max(xs); got != 95 {
		t.Errorf("expected max 95, got %f", got)
	}
	if idx, _ := ArgMax(xs); idx != 2 {
		t.Errorf("expected first max index 2, got %d", idx)
	}

	if _, ok := Min(nil); ok {
		t.Error("Min: expected ok=false for empty sample")
	}
	if _, ok := Max(nil); ok {
		t.Error("Max: expected ok=false for empty sample")
	}
	if idx, ok := ArgMax(nil); ok || idx != -1 {
		t.Errorf("ArgMax: expected (-1, false), got (%d, %v)", idx, ok)
	}
}
