// Package catalog lists the exercises known to the service.
package catalog

import (
	"slices"

	"github.com/ayusman/liftlens/internal/cameraview"
	"github.com/ayusman/liftlens/internal/technique"
)

// Exercise describes one exercise and how it must be filmed.
type Exercise struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	MuscleGroup string          `json:"muscle_group"`
	CameraView  cameraview.View `json:"camera_view"`
	Aspects     []string        `json:"aspects"`
}

// Supported reports whether a rule engine exists for the exercise.
func (e Exercise) Supported() bool {
	_, ok := technique.Lookup(e.ID)
	return ok
}

// MuscleGroup is a named group of exercises.
type MuscleGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

var muscleGroups = []MuscleGroup{
	{ID: "chest", Name: "Chest", Exercises: []string{"bench_press", "incline_bench_press", "push_up"}},
	{ID: "shoulders", Name: "Shoulders", Exercises: []string{"overhead_press", "lateral_raise", "arnold_press", "upright_row"}},
	{ID: "legs", Name: "Legs", Exercises: []string{"squat", "lunge", "bulgarian_split_squat", "romanian_deadlift"}},
	{ID: "back", Name: "Back", Exercises: []string{"pull_up", "barbell_row", "deadlift"}},
}

var exercises = map[string]Exercise{
	"bench_press": {
		Name: "Bench Press", MuscleGroup: "chest", CameraView: cameraview.Side,
		Aspects: []string{"Bar path", "Elbow angle", "Arch position", "Grip width"},
	},
	"incline_bench_press": {
		Name: "Incline Bench Press", MuscleGroup: "chest", CameraView: cameraview.Side,
		Aspects: []string{"Bar path", "Elbow angle", "Bench angle", "Grip width"},
	},
	"push_up": {
		Name: "Push-up", MuscleGroup: "chest", CameraView: cameraview.Side,
		Aspects: []string{"Body alignment", "Elbow angle", "Depth", "Hand placement"},
	},
	"overhead_press": {
		Name: "Overhead Press", MuscleGroup: "shoulders", CameraView: cameraview.Any,
		Aspects: []string{"Bar path", "Back lean", "Lockout", "Elbow position"},
	},
	"lateral_raise": {
		Name: "Lateral Raise", MuscleGroup: "shoulders", CameraView: cameraview.Any,
		Aspects: []string{"Arm angle", "Shoulder height", "Body swing", "Elbow bend"},
	},
	"arnold_press": {
		Name: "Arnold Press", MuscleGroup: "shoulders", CameraView: cameraview.Front,
		Aspects: []string{"Rotation path", "Elbow position", "Lockout", "Posture"},
	},
	"upright_row": {
		Name: "Upright Row", MuscleGroup: "shoulders", CameraView: cameraview.Front,
		Aspects: []string{"Pull height", "Elbow bend", "Body swing"},
	},
	"squat": {
		Name: "Squat", MuscleGroup: "legs", CameraView: cameraview.Side,
		Aspects: []string{"Knee alignment", "Depth", "Back angle", "Hip hinge"},
	},
	"lunge": {
		Name: "Lunge", MuscleGroup: "legs", CameraView: cameraview.Side,
		Aspects: []string{"Front knee depth", "Torso position", "Back knee", "Stride"},
	},
	"bulgarian_split_squat": {
		Name: "Bulgarian Split Squat", MuscleGroup: "legs", CameraView: cameraview.Side,
		Aspects: []string{"Knee tracking", "Torso position", "Depth", "Balance"},
	},
	"romanian_deadlift": {
		Name: "Romanian Deadlift", MuscleGroup: "legs", CameraView: cameraview.Side,
		Aspects: []string{"Hip hinge", "Back position", "Knee bend", "Bar path"},
	},
	"pull_up": {
		Name: "Pull-up", MuscleGroup: "back", CameraView: cameraview.Any,
		Aspects: []string{"Full extension", "Chin over bar", "Body swing", "Grip"},
	},
	"barbell_row": {
		Name: "Barbell Row", MuscleGroup: "back", CameraView: cameraview.Side,
		Aspects: []string{"Back angle", "Elbow path", "Hip hinge", "Bar path"},
	},
	"deadlift": {
		Name: "Deadlift", MuscleGroup: "back", CameraView: cameraview.Side,
		Aspects: []string{"Back position", "Hip hinge", "Bar path", "Lockout"},
	},
}

// Get returns the exercise with the given id.
func Get(id string) (Exercise, bool) {
	e, ok := exercises[id]
	if !ok {
		return Exercise{}, false
	}
	e.ID = id
	e.Aspects = slices.Clone(e.Aspects)
	return e, true
}

// List returns every exercise, grouped in muscle group order.
func List() []Exercise {
	out := make([]Exercise, 0, len(exercises))
	for _, g := range muscleGroups {
		for _, id := range g.Exercises {
			e, _ := Get(id)
			out = append(out, e)
		}
	}
	return out
}

// MuscleGroups returns the muscle groups in display order.
func MuscleGroups() []MuscleGroup {
	out := make([]MuscleGroup, len(muscleGroups))
	for i, g := range muscleGroups {
		g.Exercises = slices.Clone(g.Exercises)
		out[i] = g
	}
	return out
}

// ViewFor returns the camera view an exercise requires, Side for unknown ids.
func ViewFor(id string) cameraview.View {
	if e, ok := exercises[id]; ok {
		return e.CameraView
	}
	return cameraview.Side
}
