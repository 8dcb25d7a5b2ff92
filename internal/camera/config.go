package camera

import (
	"fmt"
	"runtime"
	"time"
)

// Backend names accepted by Open.
const (
	BackendFFmpeg = "ffmpeg"
	BackendGoCV   = "gocv"
	BackendFile   = "file"
)

// Config selects and tunes the camera backend.
type Config struct {
	Backend string `yaml:"backend"` // ffmpeg, gocv or file
	Device  string `yaml:"device"`  // /dev/video0, "0", "video=Integrated Camera"
	Format  string `yaml:"format"`  // ffmpeg input format (v4l2, avfoundation, dshow)

	// Requested resolution; 0 keeps the device's native resolution.
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Framerate int `yaml:"framerate"`

	// Image is the still picture served by the file backend.
	Image string `yaml:"image"`

	// OpenTimeout bounds how long Open waits for the first frame.
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// DefaultConfig returns the platform's default webcam through ffmpeg.
func DefaultConfig() Config {
	cfg := Config{
		Backend:     BackendFFmpeg,
		Framerate:   15,
		OpenTimeout: 10 * time.Second,
	}
	switch runtime.GOOS {
	case "darwin":
		cfg.Format, cfg.Device = "avfoundation", "0"
	case "windows":
		cfg.Format, cfg.Device = "dshow", "video=Integrated Camera"
	default:
		cfg.Format, cfg.Device = "v4l2", "/dev/video0"
	}
	return cfg
}

// Validate checks if the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Backend {
	case BackendFFmpeg, BackendGoCV:
		if c.Device == "" {
			errors = append(errors, fmt.Sprintf("camera.device is required for the %s backend", c.Backend))
		}
	case BackendFile:
		if c.Image == "" {
			errors = append(errors, "camera.image is required for the file backend")
		}
	default:
		errors = append(errors, "camera.backend must be ffmpeg, gocv, or file")
	}

	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "camera.width and camera.height must not be negative")
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "camera.width and camera.height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > 120 {
		errors = append(errors, "camera.framerate must be between 0 and 120")
	}
	if c.OpenTimeout < 0 {
		errors = append(errors, "camera.open_timeout must not be negative")
	}
	return errors
}
