// Package server provides the HTTP server for the LiftLens analysis service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/liftlens/internal/app"
	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/server/api"
	"github.com/ayusman/liftlens/internal/server/middleware"
)

// Config holds the server configuration.
type Config struct {
	App       *app.App
	Feed      *Feed
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
	UploadDir string
	StaticDir string
}

// Server represents the HTTP server for the LiftLens application.
type Server struct {
	config     Config
	router     *mux.Router
	start      time.Time
	httpServer *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		start:  time.Now(),
	}
	s.router = s.routerSetup()
	return s
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet).Name("health")

	api.NewExerciseHandler().SetupRoutes(r)

	if s.config.App != nil {
		api.NewAnalysisHandler(s.config.App, s.config.UploadDir).SetupRoutes(r)

		if st := s.config.App.Store(); st != nil {
			r.Handle("/api/analyses/{id}/skeleton-preview", NewPreviewHandler(st)).Methods(http.MethodGet).Name("skeleton-preview")
		}
	}

	if s.config.Feed != nil {
		r.Handle("/api/live", s.config.Feed).Methods(http.MethodGet).Name("live")
	}

	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("metrics")
	}

	if s.config.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir))).Methods(http.MethodGet)
	}

	r.Use(middleware.PanicRecovery(s.config.Metrics))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.config.Metrics))

	return r
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects live clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof(" > server listening on: [%s]", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.config.Feed != nil {
		s.config.Feed.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
