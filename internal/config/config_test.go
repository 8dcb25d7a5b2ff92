package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia3/attend/internal/camera"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attend.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.MinBrightness != 0 {
		t.Error("brightness enforcement should be off by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server_url: http://kiosk.local:5000
min_brightness: 40
toast_duration: 6s
camera:
  backend: file
  image: /tmp/face.jpg
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "http://kiosk.local:5000" || cfg.MinBrightness != 40 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ToastDuration != 6*time.Second {
		t.Errorf("toast_duration = %v", cfg.ToastDuration)
	}
	if cfg.Camera.Backend != camera.BackendFile || cfg.Camera.Image != "/tmp/face.jpg" {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	// Keys absent from the file keep their defaults
	if cfg.JPEGQuality != Default().JPEGQuality || cfg.PreviewDuration != Default().PreviewDuration {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server_url: http://from-file:5000\n")
	t.Setenv(EnvServerURL, "http://from-env:5000")
	t.Setenv(EnvCameraDevice, "/dev/video2")
	t.Setenv(EnvMinBrightness, "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "http://from-env:5000" || cfg.Camera.Device != "/dev/video2" || cfg.MinBrightness != 25 {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv(EnvMinBrightness, "dark")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for non-numeric brightness")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for an explicit missing file")
	}
	if _, err := Load(writeFile(t, "server_url: [unclosed")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing server", func(c *Config) { c.ServerURL = "" }, "server_url is required"},
		{"bad url", func(c *Config) { c.ServerURL = "not a url" }, "server_url must be a URL"},
		{"quality", func(c *Config) { c.JPEGQuality = 0 }, "jpeg_quality must be at least 1"},
		{"brightness", func(c *Config) { c.MinBrightness = 300 }, "min_brightness must be at most 255"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level must be one of"},
		{"camera", func(c *Config) { c.Camera.Backend = "webcam" }, "camera.backend must be"},
		{"timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout must be at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
