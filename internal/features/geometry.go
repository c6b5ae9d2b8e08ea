// Package features converts per-frame pose landmarks into joint-angle features.
package features

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/liftlens/internal/detector"
)

// vertical points down the image, the direction of a standing spine from shoulder to hip.
var vertical = r2.Vec{X: 0, Y: 1}

// VisibilityThreshold is the minimum landmark confidence used by every measure.
const VisibilityThreshold = 0.5

func visible(lms ...detector.Landmark) bool {
	for _, lm := range lms {
		if lm.Visibility < VisibilityThreshold {
			return false
		}
	}
	return true
}

func imagePoint(lm detector.Landmark) r2.Vec {
	return r2.Vec{X: lm.X, Y: lm.Y}
}

func clampCos(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Angle returns the angle in degrees at b formed by segments b→a and b→c in the
// image plane. It returns nil if any landmark is below VisibilityThreshold or
// either segment has zero length.
func Angle(a, b, c detector.Landmark) *float64 {
	if !visible(a, b, c) {
		return nil
	}

	ba := r2.Sub(imagePoint(a), imagePoint(b))
	bc := r2.Sub(imagePoint(c), imagePoint(b))

	normBA := r2.Norm(ba)
	normBC := r2.Norm(bc)
	if normBA == 0 || normBC == 0 {
		return nil
	}

	cosine := clampCos(r2.Dot(ba, bc) / (normBA * normBC))
	v := degrees(math.Acos(cosine))
	return &v
}

// BackAngle returns the angle between the vertical axis and the
// shoulder→hip segment: 0° upright, 90° horizontal.
func BackAngle(shoulder, hip detector.Landmark) *float64 {
	if !visible(shoulder, hip) {
		return nil
	}

	spine := r2.Sub(imagePoint(hip), imagePoint(shoulder))

	norm := r2.Norm(spine)
	if norm == 0 {
		return nil
	}

	v := degrees(math.Acos(clampCos(r2.Dot(spine, vertical) / norm)))
	return &v
}

// ElbowFlare3D returns the world-space angle of the elbow relative to the
// shoulder: 0° elbow straight in front, 90° fully out to the side.
func ElbowFlare3D(shoulder, elbow detector.Landmark) *float64 {
	if !visible(shoulder, elbow) || shoulder.World == nil || elbow.World == nil {
		return nil
	}

	lateral := math.Abs(elbow.World.X - shoulder.World.X)
	forward := math.Abs(elbow.World.Z - shoulder.World.Z)
	if lateral == 0 && forward == 0 {
		return nil
	}

	v := degrees(math.Atan2(lateral, forward))
	return &v
}

// BackLean3D returns the world-space lean of the shoulder→hip segment from
// vertical, measured in the sagittal (y,z) plane: 0° upright.
func BackLean3D(shoulder, hip detector.Landmark) *float64 {
	if !visible(shoulder, hip) || shoulder.World == nil || hip.World == nil {
		return nil
	}

	dy := hip.World.Y - shoulder.World.Y
	dz := hip.World.Z - shoulder.World.Z

	norm := math.Hypot(dy, dz)
	if norm == 0 {
		return nil
	}

	v := degrees(math.Acos(clampCos(math.Abs(dy) / norm)))
	return &v
}

// Average combines a left/right pair: the mean when both are present,
// whichever is present otherwise, nil when neither is.
func Average(left, right *float64) *float64 {
	switch {
	case left != nil && right != nil:
		v := (*left + *right) / 2
		return &v
	case left != nil:
		v := *left
		return &v
	case right != nil:
		v := *right
		return &v
	default:
		return nil
	}
}
