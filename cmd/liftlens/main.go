package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/liftlens/internal/app"
	"github.com/ayusman/liftlens/internal/config"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/logging"
	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/render"
	"github.com/ayusman/liftlens/internal/server"
	"github.com/ayusman/liftlens/internal/store"
)

func main() {
	fmt.Println("LiftLens - Exercise Technique Analysis")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "", "path for the TOML config file (empty for defaults and env vars only)")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	if logCloser != nil {
		defer logCloser.Close()
	}

	log.Warnf("---->> running in [%s] environment", *env)
	log.Debugf("using db path: [%s]", cfg.DBPath)
	log.Debugf("using upload dir: [%s]", cfg.UploadDir)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %s", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize store: %s", err)
	}

	var det detector.Detector
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		ScriptPath:      cfg.DetectorScript,
		PythonPath:      cfg.DetectorPython,
		ModelComplexity: cfg.ModelComplexity,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinConfidence,
	})
	if err != nil {
		log.Errorf("pose detector unavailable, video analysis disabled: %s", err)
	} else {
		det = mp
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager(metrics.Namespace, "service", reg)

	feed := server.NewFeed(metricsManager)

	application := app.New(app.Config{
		Store:            st,
		Detector:         det,
		Renderer:         render.NewSkeletonRenderer(),
		Metrics:          metricsManager,
		Publisher:        feed,
		FrontThreshold:   cfg.FrontThreshold,
		MaxVideoDuration: time.Duration(cfg.MaxVideoDurationSec) * time.Second,
		OutputDir:        cfg.UploadDir,
	})
	defer func() {
		if err := application.Close(); err != nil {
			log.Errorf("shutdown: %s", err)
		}
	}()

	webDir := findWebDir()
	if webDir != "" {
		log.Infof("serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		App:       application,
		Feed:      feed,
		Metrics:   metricsManager,
		Gatherer:  reg,
		UploadDir: cfg.UploadDir,
		StaticDir: webDir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		log.Errorf("server failed: %s", err)
		return
	}
	log.Info("server stopped")
}

// findWebDir returns the first of "web", "../web" and ~/.liftlens/web that
// exists, or "" if none does.
func findWebDir() string {
	candidates := []string{"web", filepath.Join("..", "web")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".liftlens", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
