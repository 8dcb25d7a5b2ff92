// Package camera acquires a live video stream and keeps its latest frame
// available for the capturer for the lifetime of the process.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/attend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when camera access is denied or the device fails.
var ErrUnavailable = errors.New("camera unavailable")

// ErrNoFrame is returned by Latest before the stream has produced a frame
// or after it has stopped.
var ErrNoFrame = errors.New("no frame received yet")

// ProcessError is a failure of an external capture process. Cmd keeps the
// process's stderr for the error report.
type ProcessError struct {
	Err error
	Cmd *utils.SafeCommand
}

func (e *ProcessError) Error() string { return e.Err.Error() }

func (e *ProcessError) Unwrap() error { return e.Err }

// Process returns the capture process behind err, or nil.
func Process(err error) *utils.SafeCommand {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Cmd
	}
	return nil
}

// Source is a bound video stream. Latest returns the most recent frame as
// encoded image bytes (JPEG for the live backends).
type Source interface {
	Latest() ([]byte, error)
	Close() error
}

// Open requests the configured device and waits until it delivers a first frame.
// Any failure is wrapped in ErrUnavailable; there is no retry.
func Open(ctx context.Context, cfg Config, logger *logrus.Logger) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: invalid config: %v", ErrUnavailable, errs)
	}

	var (
		src Source
		err error
	)
	switch cfg.Backend {
	case BackendFFmpeg:
		src, err = openFFmpeg(ctx, cfg, logger)
	case BackendGoCV:
		src, err = openGoCV(cfg, logger)
	case BackendFile:
		src, err = openFile(cfg.Image)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	logger.WithFields(logrus.Fields{
		"backend": cfg.Backend,
		"device":  cfg.Device,
	}).Info("camera stream acquired")
	return src, nil
}

// fileSource serves a single still image. It stands in for a webcam on
// headless machines and in tests.
type fileSource struct {
	data []byte
}

func openFile(path string) (*fileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	return &fileSource{data: data}, nil
}

// NewStill wraps already-encoded image bytes as a Source.
func NewStill(data []byte) Source {
	return &fileSource{data: data}
}

func (f *fileSource) Latest() ([]byte, error) {
	if len(f.data) == 0 {
		return nil, ErrNoFrame
	}
	return f.data, nil
}

func (f *fileSource) Close() error { return nil }
