package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/liftlens/internal/app"
	"github.com/ayusman/liftlens/internal/capture"
	"github.com/ayusman/liftlens/internal/catalog"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/store"
)

const (
	maxLandmarksBody = 64 << 20
	maxUploadMemory  = 32 << 20
)

// AnalysisHandler handles HTTP requests for analysis resources.
type AnalysisHandler struct {
	app       *app.App
	uploadDir string
}

// NewAnalysisHandler creates a handler that stores uploads in uploadDir.
func NewAnalysisHandler(a *app.App, uploadDir string) *AnalysisHandler {
	return &AnalysisHandler{app: a, uploadDir: uploadDir}
}

func (h *AnalysisHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/analyses", h.HandleCreate).Methods(http.MethodPost).Name("new-analysis")
	r.HandleFunc("/api/analyses/video", h.HandleUpload).Methods(http.MethodPost).Name("new-video-analysis")
	r.HandleFunc("/api/analyses", h.HandleList).Methods(http.MethodGet).Name("list-analyses")
	r.HandleFunc("/api/analyses/{id}", h.HandleGet).Methods(http.MethodGet).Name("get-analysis")
	r.HandleFunc("/api/analyses/{id}", h.HandleDelete).Methods(http.MethodDelete).Name("delete-analysis")
	r.HandleFunc("/api/analyses/{id}/skeleton-video", h.HandleSkeletonVideo).Methods(http.MethodGet).Name("skeleton-video")
}

type createAnalysisRequest struct {
	ExerciseID string `json:"exercise_id"`
	// A null frame means no person was detected in it.
	Frames [][]detector.Landmark `json:"frames"`
}

// HandleCreate handles POST /api/analyses with pre-detected landmarks.
func (h *AnalysisHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLandmarksBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg, ok := validExercise(req.ExerciseID); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	seq := make([]*detector.PoseLandmarks, len(req.Frames))
	for i, points := range req.Frames {
		if points == nil {
			continue
		}
		pose, err := detector.NewPoseLandmarks(points)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("frame %d: %s", i, err))
			return
		}
		seq[i] = pose
	}

	analysis, err := h.app.AnalyzeLandmarks(r.Context(), req.ExerciseID, seq)
	if err != nil {
		log.Errorf("analyze landmarks: %s", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze landmarks")
		return
	}

	writeJSON(w, http.StatusCreated, ToAnalysisResponse(analysis))
}

// HandleUpload handles POST /api/analyses/video with a multipart video upload.
func (h *AnalysisHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	exerciseID := r.FormValue("exercise_id")
	if msg, ok := validExercise(exerciseID); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(capture.SupportedExtensions, ext) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: '%s'", ext))
		return
	}

	renderSkeleton := false
	if v := r.FormValue("render"); v != "" {
		if renderSkeleton, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "render must be a boolean")
			return
		}
	}

	path, err := h.saveUpload(file, ext)
	if err != nil {
		log.Errorf("save upload: %s", err)
		writeError(w, http.StatusInternalServerError, "Failed to store video")
		return
	}

	analysis, err := h.app.AnalyzeVideo(r.Context(), app.VideoRequest{
		ExerciseID: exerciseID,
		VideoPath:  path,
		Render:     renderSkeleton,
	})
	if err != nil {
		os.Remove(path)
		if errors.Is(err, app.ErrVideoTooLong) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Errorf("analyze video: %s", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze video")
		return
	}

	writeJSON(w, http.StatusCreated, ToAnalysisResponse(analysis))
}

// HandleList handles GET /api/analyses?exercise_id=&limit=.
func (h *AnalysisHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	analyses, err := s.Analyses().List(r.URL.Query().Get("exercise_id"), limit)
	if err != nil {
		log.Errorf("list analyses: %s", err)
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	resp := listAnalysesResponse{Analyses: make([]AnalysisResponse, 0, len(analyses))}
	for _, a := range analyses {
		resp.Analyses = append(resp.Analyses, ToAnalysisResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/analyses/{id}.
func (h *AnalysisHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookup(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ToAnalysisResponse(analysis))
}

// HandleDelete handles DELETE /api/analyses/{id}.
func (h *AnalysisHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.store(w); !ok {
		return
	}

	if err := h.app.DeleteAnalysis(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSkeletonVideo handles GET /api/analyses/{id}/skeleton-video.
// Range requests are honored so players can seek.
func (h *AnalysisHandler) HandleSkeletonVideo(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookup(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	if analysis.SkeletonVideoPath == "" {
		writeError(w, http.StatusNotFound, "Skeleton video not available")
		return
	}

	f, err := os.Open(analysis.SkeletonVideoPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "Skeleton video not available")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read skeleton video")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, filepath.Base(analysis.SkeletonVideoPath), info.ModTime(), f)
}

func (h *AnalysisHandler) store(w http.ResponseWriter) (*store.Store, bool) {
	s := h.app.Store()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "Storage not configured")
		return nil, false
	}
	return s, true
}

func (h *AnalysisHandler) lookup(w http.ResponseWriter, id string) (*store.Analysis, bool) {
	s, ok := h.store(w)
	if !ok {
		return nil, false
	}

	analysis, err := s.Analyses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get analysis")
		return nil, false
	}
	return analysis, true
}

func (h *AnalysisHandler) saveUpload(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// validExercise reports whether id names a catalog exercise. Catalog entries
// without a rule engine are accepted and come back as unsupported results.
func validExercise(id string) (string, bool) {
	if id == "" {
		return "exercise_id is required", false
	}
	if _, ok := catalog.Get(id); !ok {
		return fmt.Sprintf("Unknown exercise: '%s'", id), false
	}
	return "", true
}
