package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/liftlens/internal/catalog"
)

type exerciseResponse struct {
	catalog.Exercise
	Supported bool `json:"supported"`
}

type listExercisesResponse struct {
	Exercises    []exerciseResponse    `json:"exercises"`
	MuscleGroups []catalog.MuscleGroup `json:"muscle_groups"`
}

// ExerciseHandler serves the static exercise catalog.
type ExerciseHandler struct{}

func NewExerciseHandler() *ExerciseHandler {
	return &ExerciseHandler{}
}

func (h *ExerciseHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/exercises", h.HandleList).Methods(http.MethodGet).Name("list-exercises")
	r.HandleFunc("/api/exercises/{id}", h.HandleGet).Methods(http.MethodGet).Name("get-exercise")
}

// HandleList handles GET /api/exercises.
func (h *ExerciseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := catalog.List()
	resp := listExercisesResponse{
		Exercises:    make([]exerciseResponse, 0, len(list)),
		MuscleGroups: catalog.MuscleGroups(),
	}
	for _, e := range list {
		resp.Exercises = append(resp.Exercises, exerciseResponse{Exercise: e, Supported: e.Supported()})
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/exercises/{id}.
func (h *ExerciseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := catalog.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Exercise not found")
		return
	}

	writeJSON(w, http.StatusOK, exerciseResponse{Exercise: e, Supported: e.Supported()})
}
