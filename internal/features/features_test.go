package features

import (
	"math"
	"testing"

	"github.com/ayusman/liftlens/internal/detector"
)

const tolerance = 1e-6

func lm(x, y float64) detector.Landmark {
	return detector.Landmark{X: x, Y: y, Visibility: 1}
}

func world(x, y, z float64) detector.Landmark {
	return detector.Landmark{Visibility: 1, World: &detector.Point3D{X: x, Y: y, Z: z}}
}

func assertAngle(t *testing.T, got *float64, want float64) {
	t.Helper()
	assertAngleWithin(t, got, want, tolerance)
}

func assertAngleWithin(t *testing.T, got *float64, want, tol float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected %.2f°, got nil", want)
	}
	if math.Abs(*got-want) > tol {
		t.Errorf("expected %.4f°, got %.10f° (tolerance %g)", want, *got, tol)
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c detector.Landmark
		want    float64
		// tol overrides tolerance. acos loses precision next to ±1, so
		// collinear points off the axes land a few µ° short of 180.
		tol float64
	}{
		{"right angle", lm(1, 0), lm(0, 0), lm(0, 1), 90, 0},
		{"straight line", lm(0, 0), lm(1, 0), lm(2, 0), 180, 0},
		{"straight diagonal", lm(0, 0), lm(0.5, 0.5), lm(1, 1), 180, 1e-4},
		{"folded back", lm(1, 0), lm(0, 0), lm(2, 0), 0, 0},
		{"forty five", lm(1, 0), lm(0, 0), lm(1, 1), 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tol := tt.tol
			if tol == 0 {
				tol = tolerance
			}
			assertAngleWithin(t, Angle(tt.a, tt.b, tt.c), tt.want, tol)
		})
	}
}

func TestAngleSymmetry(t *testing.T) {
	points := []detector.Landmark{
		lm(0.1, 0.2), lm(0.4, 0.9), lm(0.75, 0.3), lm(0.5, 0.5), lm(0.33, 0.01), lm(0.9, 0.65),
	}

	for i, a := range points {
		for j, b := range points {
			for k, c := range points {
				if i == j || j == k {
					continue
				}
				abc := Angle(a, b, c)
				cba := Angle(c, b, a)
				if (abc == nil) != (cba == nil) {
					t.Fatalf("(%d,%d,%d): presence differs", i, j, k)
				}
				if abc != nil && math.Abs(*abc-*cba) > tolerance {
					t.Errorf("(%d,%d,%d): %f != %f", i, j, k, *abc, *cba)
				}
			}
		}
	}
}

func TestAngleLowConfidence(t *testing.T) {
	for slot := 0; slot < 3; slot++ {
		pts := []detector.Landmark{lm(1, 0), lm(0, 0), lm(0, 1)}
		pts[slot].Visibility = 0.49

		if got := Angle(pts[0], pts[1], pts[2]); got != nil {
			t.Errorf("slot %d below threshold: expected nil, got %f", slot, *got)
		}
	}

	t.Run("threshold itself is accepted", func(t *testing.T) {
		a, b, c := lm(1, 0), lm(0, 0), lm(0, 1)
		b.Visibility = VisibilityThreshold
		assertAngle(t, Angle(a, b, c), 90)
	})
}

func TestAngleZeroLength(t *testing.T) {
	if got := Angle(lm(0.3, 0.3), lm(0.3, 0.3), lm(0.8, 0.1)); got != nil {
		t.Errorf("expected nil for coincident points, got %f", *got)
	}
	if got := Angle(lm(0.8, 0.1), lm(0.3, 0.3), lm(0.3, 0.3)); got != nil {
		t.Errorf("expected nil for coincident points, got %f", *got)
	}
}

func TestBackAngle(t *testing.T) {
	t.Run("upright", func(t *testing.T) {
		assertAngle(t, BackAngle(lm(0.5, 0.3), lm(0.5, 0.6)), 0)
	})

	t.Run("horizontal", func(t *testing.T) {
		assertAngle(t, BackAngle(lm(0.2, 0.5), lm(0.6, 0.5)), 90)
	})

	t.Run("forty five degree lean", func(t *testing.T) {
		assertAngle(t, BackAngle(lm(0.3, 0.3), lm(0.5, 0.5)), 45)
	})

	t.Run("low confidence", func(t *testing.T) {
		hip := lm(0.5, 0.6)
		hip.Visibility = 0.2
		if got := BackAngle(lm(0.5, 0.3), hip); got != nil {
			t.Errorf("expected nil, got %f", *got)
		}
	})
}

func TestElbowFlare3D(t *testing.T) {
	t.Run("elbow in front", func(t *testing.T) {
		assertAngle(t, ElbowFlare3D(world(0, 0, 0), world(0, 0.2, -0.3)), 0)
	})

	t.Run("elbow flared out", func(t *testing.T) {
		assertAngle(t, ElbowFlare3D(world(0, 0, 0), world(0.3, 0.2, 0)), 90)
	})

	t.Run("diagonal", func(t *testing.T) {
		assertAngle(t, ElbowFlare3D(world(0, 0, 0), world(-0.1, 0.2, 0.1)), 45)
	})

	t.Run("no offsets", func(t *testing.T) {
		if got := ElbowFlare3D(world(0, 0, 0), world(0, 0.3, 0)); got != nil {
			t.Errorf("expected nil, got %f", *got)
		}
	})

	t.Run("missing world data", func(t *testing.T) {
		if got := ElbowFlare3D(lm(0.5, 0.3), world(0.1, 0, 0)); got != nil {
			t.Errorf("expected nil, got %f", *got)
		}
	})
}

func TestBackLean3D(t *testing.T) {
	t.Run("upright", func(t *testing.T) {
		assertAngle(t, BackLean3D(world(0, -0.5, 0), world(0, 0, 0)), 0)
	})

	t.Run("leaning forward", func(t *testing.T) {
		assertAngle(t, BackLean3D(world(0, -0.5, -0.5), world(0, 0, 0)), 45)
	})

	t.Run("axis direction does not matter", func(t *testing.T) {
		assertAngle(t, BackLean3D(world(0, 0.5, -0.5), world(0, 0, 0)), 45)
	})

	t.Run("lateral offset is ignored", func(t *testing.T) {
		assertAngle(t, BackLean3D(world(0.3, -0.5, 0), world(0, 0, 0)), 0)
	})

	t.Run("missing world data", func(t *testing.T) {
		if got := BackLean3D(world(0, -0.5, 0), lm(0.5, 0.5)); got != nil {
			t.Errorf("expected nil, got %f", *got)
		}
	})
}

func TestAverage(t *testing.T) {
	l, r := 80.0, 100.0

	assertAngle(t, Average(&l, &r), 90)
	assertAngle(t, Average(&l, nil), 80)
	assertAngle(t, Average(nil, &r), 100)

	if got := Average(nil, nil); got != nil {
		t.Errorf("expected nil, got %f", *got)
	}

	got := Average(&l, nil)
	*got = 0
	if l != 80 {
		t.Error("Average must not alias its input")
	}
}

func TestExtract(t *testing.T) {
	e := NewExtractor()

	t.Run("nil frame", func(t *testing.T) {
		if got := e.Extract(nil); got != nil {
			t.Errorf("expected nil features, got %+v", got)
		}
	})

	t.Run("standing side view", func(t *testing.T) {
		pose := detector.StandingSideLandmarks()
		f := e.Extract(&pose)

		assertAngle(t, f.KneeAngleLeft, 180)
		assertAngle(t, f.KneeAngleRight, 180)
		assertAngle(t, f.HipAngleLeft, 180)
		assertAngle(t, f.ElbowAngleLeft, 180)
		assertAngle(t, f.ShoulderAngleLeft, 0)
		assertAngle(t, f.BackAngle, 0)
		assertAngle(t, f.ElbowFlare3D, 0)
		assertAngle(t, f.BackLean3D, 0)

		assertAngle(t, f.AvgKnee(), 180)
		assertAngle(t, f.AvgElbow(), 180)
	})

	t.Run("no world coordinates", func(t *testing.T) {
		pose := detector.WithoutWorld(detector.StandingSideLandmarks())
		f := e.Extract(&pose)

		if f.ElbowFlare3D != nil || f.BackLean3D != nil {
			t.Error("expected 3D measures to be absent")
		}
		if f.BackAngle == nil {
			t.Error("2D back angle should still be present")
		}
	})

	t.Run("hidden left leg", func(t *testing.T) {
		pose := detector.StandingSideLandmarks()
		pose.Points[detector.LeftKnee].Visibility = 0.1
		f := e.Extract(&pose)

		if f.KneeAngleLeft != nil {
			t.Error("expected left knee angle to be absent")
		}
		if f.HipAngleLeft != nil {
			t.Error("expected left hip angle to be absent")
		}
		assertAngle(t, f.AvgKnee(), 180)
	})
}

func TestExtractSequence(t *testing.T) {
	pose := detector.StandingSideLandmarks()
	seq := []*detector.PoseLandmarks{nil, &pose, nil, &pose, &pose}

	got := NewExtractor().ExtractSequence(seq)

	if len(got) != len(seq) {
		t.Fatalf("expected %d frames, got %d", len(seq), len(got))
	}
	for i := range seq {
		if (seq[i] == nil) != (got[i] == nil) {
			t.Errorf("frame %d: absence not preserved", i)
		}
	}
}
