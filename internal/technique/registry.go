package technique

import (
	"maps"
	"slices"
)

// Exercise identifiers with a rule engine.
const (
	ExerciseSquat             = "squat"
	ExerciseLunge             = "lunge"
	ExercisePushUp            = "push_up"
	ExercisePullUp            = "pull_up"
	ExerciseBenchPress        = "bench_press"
	ExerciseInclineBenchPress = "incline_bench_press"
	ExerciseOverheadPress     = "overhead_press"
	ExerciseLateralRaise      = "lateral_raise"
	ExerciseUprightRow        = "upright_row"
	ExerciseBarbellRow        = "barbell_row"
	ExerciseDeadlift          = "deadlift"
	ExerciseRomanianDeadlift  = "romanian_deadlift"
)

// engines is built once and never modified, so concurrent lookups need no lock.
var engines = map[string]Engine{
	ExerciseSquat:             Squat{},
	ExerciseLunge:             Lunge{},
	ExercisePushUp:            PushUp{},
	ExercisePullUp:            PullUp{},
	ExerciseBenchPress:        BenchPress{},
	ExerciseInclineBenchPress: InclineBenchPress{},
	ExerciseOverheadPress:     OverheadPress{},
	ExerciseLateralRaise:      LateralRaise{},
	ExerciseUprightRow:        UprightRow{},
	ExerciseBarbellRow:        BarbellRow{},
	ExerciseDeadlift:          Deadlift{},
	ExerciseRomanianDeadlift:  RomanianDeadlift{},
}

// Lookup returns the engine for an exercise id.
func Lookup(exerciseID string) (Engine, bool) {
	e, ok := engines[exerciseID]
	return e, ok
}

// Supported returns the ids of all exercises with an engine, sorted.
func Supported() []string {
	return slices.Sorted(maps.Keys(engines))
}

// SkipsCameraCheck reports whether the exercise's own body position aspect
// replaces the camera view check.
func SkipsCameraCheck(exerciseID string) bool {
	return exerciseID == ExerciseBenchPress || exerciseID == ExerciseInclineBenchPress
}
