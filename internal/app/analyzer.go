package app

import (
	"errors"

	"github.com/ayusman/liftlens/internal/cameraview"
	"github.com/ayusman/liftlens/internal/catalog"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/features"
	"github.com/ayusman/liftlens/internal/technique"
)

// Analyzer runs the technique pipeline over an already detected landmark
// sequence. It holds no mutable state and may be shared between goroutines.
type Analyzer struct {
	Validator *cameraview.Validator
	Extractor *features.Extractor
}

// NewAnalyzer creates an Analyzer whose front-view check uses frontThreshold
// (cameraview.DefaultFrontThreshold when not positive).
func NewAnalyzer(frontThreshold float64) *Analyzer {
	return &Analyzer{
		Validator: cameraview.NewValidator(frontThreshold),
		Extractor: features.NewExtractor(),
	}
}

// Analyze grades seq as exerciseID. Every outcome, including an unknown
// exercise or a badly filmed set, is reported in the returned Result.
func (a *Analyzer) Analyze(seq []*detector.PoseLandmarks, exerciseID string) technique.Result {
	engine, ok := technique.Lookup(exerciseID)
	if !ok {
		return technique.UnsupportedResult(exerciseID)
	}

	// Bench variants grade body position themselves, so the view check is
	// left to the engine.
	if !technique.SkipsCameraCheck(exerciseID) {
		if err := a.Validator.Check(seq, catalog.ViewFor(exerciseID)); err != nil {
			var rej *cameraview.Rejection
			if errors.As(err, &rej) {
				return technique.CameraAngleResult(rej.Message)
			}
			return technique.CameraAngleResult(err.Error())
		}
	}

	return engine.Evaluate(a.Extractor.ExtractSequence(seq))
}
