// Package api provides HTTP API handlers for the LiftLens analysis service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/liftlens/internal/store"
	"github.com/ayusman/liftlens/internal/technique"
)

// AnalysisResponse is the wire form of a stored analysis.
type AnalysisResponse struct {
	ID               string                   `json:"id"`
	ExerciseID       string                   `json:"exercise_id"`
	MuscleGroup      string                   `json:"muscle_group,omitempty"`
	OverallScore     technique.Score          `json:"overall_score"`
	Feedback         []technique.FeedbackItem `json:"feedback"`
	FrameCount       int                      `json:"frame_count"`
	HasSkeletonVideo bool                     `json:"has_skeleton_video"`
	CreatedAt        string                   `json:"created_at"`
}

type listAnalysesResponse struct {
	Analyses []AnalysisResponse `json:"analyses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ToAnalysisResponse converts a store.Analysis to its wire form.
func ToAnalysisResponse(a *store.Analysis) AnalysisResponse {
	feedback := a.Result.Feedback
	if feedback == nil {
		feedback = []technique.FeedbackItem{}
	}
	return AnalysisResponse{
		ID:               a.ID,
		ExerciseID:       a.ExerciseID,
		MuscleGroup:      a.MuscleGroup,
		OverallScore:     a.Result.Overall,
		Feedback:         feedback,
		FrameCount:       a.FrameCount,
		HasSkeletonVideo: a.SkeletonVideoPath != "",
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Warnf("encode response: %s", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
