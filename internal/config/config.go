// Package config loads service settings from a TOML file with per-environment
// sections, overlaid by LIFTLENS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/ayusman/liftlens/internal/cameraview"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LIFTLENS_"

type Config struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`

	// logging
	LogLevel      string `toml:"log_level" env:"LOG_LEVEL"`
	LogsPath      string `toml:"logs_path" env:"LOGS_PATH"`
	LogToStdout   bool   `toml:"log_to_stdout" env:"LOG_TO_STDOUT"`
	LogFormatJSON bool   `toml:"log_format_json" env:"LOG_FORMAT_JSON"`

	// storage
	DBPath    string `toml:"db_path" env:"DB_PATH"`
	UploadDir string `toml:"upload_dir" env:"UPLOAD_DIR"`

	// analysis
	MaxVideoDurationSec int     `toml:"max_video_duration_sec" env:"MAX_VIDEO_DURATION_SEC"`
	FrontThreshold      float64 `toml:"front_threshold" env:"FRONT_THRESHOLD"`

	// pose detector
	DetectorScript  string  `toml:"detector_script" env:"DETECTOR_SCRIPT"`
	DetectorPython  string  `toml:"detector_python" env:"DETECTOR_PYTHON"`
	ModelComplexity int     `toml:"model_complexity" env:"MODEL_COMPLEXITY"`
	MinConfidence   float64 `toml:"min_confidence" env:"MIN_CONFIDENCE"`
}

// Default returns the settings used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		Host:                "127.0.0.1",
		Port:                8000,
		LogLevel:            "info",
		LogToStdout:         true,
		DBPath:              "liftlens.db",
		UploadDir:           "uploads",
		MaxVideoDurationSec: 60,
		FrontThreshold:      cameraview.DefaultFrontThreshold,
		ModelComplexity:     1,
		MinConfidence:       0.5,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the section for env from the TOML file at path and applies the
// environment overlay. An empty path skips the file. Keys missing from the
// file keep their defaults.
func Load(envName, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		t := Toml{Development: Default(), Production: Default()}
		if _, err := toml.DecodeFile(path, &t); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		section, err := t.Get(envName)
		if err != nil {
			return nil, err
		}
		cfg = section
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port: %d", c.Port)
	case c.MaxVideoDurationSec <= 0:
		return fmt.Errorf("max_video_duration_sec must be positive, got %d", c.MaxVideoDurationSec)
	case c.FrontThreshold <= 0 || c.FrontThreshold > 1:
		return fmt.Errorf("front_threshold must be in (0, 1], got %g", c.FrontThreshold)
	case c.DBPath == "":
		return fmt.Errorf("db_path is required")
	}
	return nil
}
