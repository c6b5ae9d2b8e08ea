package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/liftlens/internal/capture"
	"github.com/ayusman/liftlens/internal/store"
)

// PreviewHandler streams a rendered skeleton video as MJPEG so browsers can
// show it in an <img> tag without a video codec.
type PreviewHandler struct {
	store      *store.Store
	openSource func(path string) capture.Source
}

// NewPreviewHandler creates a new PreviewHandler reading analyses from s.
func NewPreviewHandler(s *store.Store) *PreviewHandler {
	return &PreviewHandler{
		store:      s,
		openSource: func(path string) capture.Source { return capture.NewVideoSource(path) },
	}
}

// ServeHTTP streams the skeleton video of the analysis named by {id} once,
// paced at the video's frame rate.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.store.Analyses().GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get analysis", http.StatusInternalServerError)
		return
	}
	if analysis.SkeletonVideoPath == "" {
		http.Error(w, "Skeleton video not available", http.StatusNotFound)
		return
	}

	src := h.openSource(analysis.SkeletonVideoPath)
	if err := src.Open(); err != nil {
		http.Error(w, "Skeleton video not available", http.StatusNotFound)
		return
	}
	defer src.Close()

	fps := src.Info().FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Warnf("preview %s: %s", analysis.ID, err)
			return
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
