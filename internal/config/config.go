// Package config loads kiosk settings: defaults, then a YAML file, then
// ATTEND_* environment variables. Command-line flags are applied last by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andresmejia3/attend/internal/camera"
	"github.com/andresmejia3/attend/internal/capture"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when --config is not given and the file exists.
const DefaultFile = "attend.yaml"

// Environment variables that override the file.
const (
	EnvServerURL     = "ATTEND_SERVER_URL"
	EnvCameraDevice  = "ATTEND_CAMERA_DEVICE"
	EnvCameraBackend = "ATTEND_CAMERA_BACKEND"
	EnvLogLevel      = "ATTEND_LOG_LEVEL"
	EnvMinBrightness = "ATTEND_MIN_BRIGHTNESS"
)

// Config is the full kiosk configuration.
type Config struct {
	ServerURL string        `yaml:"server_url" validate:"required,url"`
	Camera    camera.Config `yaml:"camera"`

	JPEGQuality   int `yaml:"jpeg_quality" validate:"min=1,max=100"`
	MinBrightness int `yaml:"min_brightness" validate:"min=0,max=255"` // 0 disables the check

	ToastDuration   time.Duration `yaml:"toast_duration" validate:"min=0"`
	PreviewDuration time.Duration `yaml:"preview_duration" validate:"min=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"min=0"` // 0 disables it

	PreviewDir    string `yaml:"preview_dir"`
	DashboardAddr string `yaml:"dashboard_addr"`

	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:       "http://localhost:5000",
		Camera:          camera.DefaultConfig(),
		JPEGQuality:     capture.DefaultQuality,
		ToastDuration:   notify.DefaultToastDuration,
		PreviewDuration: notify.DefaultPreviewDuration,
		RequestTimeout:  30 * time.Second,
		DashboardAddr:   "127.0.0.1:8080",
		LogLevel:        "info",
	}
}

// Load builds the configuration from path (or DefaultFile when path is
// empty and it exists), then .env and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// A missing .env is normal
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvCameraDevice); v != "" {
		c.Camera.Device = v
	}
	if v := os.Getenv(EnvCameraBackend); v != "" {
		c.Camera.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvMinBrightness); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinBrightness, err)
		}
		c.MinBrightness = n
	}
	return nil
}

var validate = validator.New()

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}
	problems = append(problems, c.Camera.Validate()...)

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}

var yamlNames = map[string]string{
	"ServerURL":       "server_url",
	"JPEGQuality":     "jpeg_quality",
	"MinBrightness":   "min_brightness",
	"ToastDuration":   "toast_duration",
	"PreviewDuration": "preview_duration",
	"RequestTimeout":  "request_timeout",
	"LogLevel":        "log_level",
}

func describe(fe validator.FieldError) string {
	name := yamlNames[fe.StructField()]
	if name == "" {
		name = fe.StructField()
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", name, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", name, fe.Tag())
}
