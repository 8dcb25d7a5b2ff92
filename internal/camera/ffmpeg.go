package camera

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/andresmejia3/attend/internal/utils"
	"github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// ffmpegSource runs ffmpeg against the device and keeps the newest MJPEG frame.
type ffmpegSource struct {
	cmd    *utils.SafeCommand
	cancel context.CancelFunc
	logger *logrus.Logger

	mu     sync.RWMutex
	latest []byte
	err    error // set once the stream ends

	done chan struct{}
}

func openFFmpeg(ctx context.Context, cfg Config, logger *logrus.Logger) (*ffmpegSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	// The stream outlives the caller's context: it is held until Close.
	streamCtx, cancel := context.WithCancel(context.Background())
	cmd := utils.NewFFmpegCaptureCmd(streamCtx, cfg.Format, cfg.Device, cfg.Width, cfg.Height, cfg.Framerate)
	return startStream(ctx, cmd, cancel, cfg.OpenTimeout, logger)
}

// startStream runs cmd, splits its stdout into JPEG frames and waits for
// the first one. cancel must stop cmd.
func startStream(ctx context.Context, cmd *utils.SafeCommand, cancel context.CancelFunc, timeout time.Duration, logger *logrus.Logger) (*ffmpegSource, error) {
	out, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &ProcessError{Err: fmt.Errorf("failed to start ffmpeg: %w", err), Cmd: cmd}
	}

	s := &ffmpegSource{
		cmd:    cmd,
		cancel: cancel,
		logger: logger,
		done:   make(chan struct{}),
	}
	first := make(chan struct{})

	go func() {
		defer close(s.done)

		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, megabyte), 64*megabyte)
		scanner.Split(utils.SplitJpeg)

		var once sync.Once
		for scanner.Scan() {
			frame := make([]byte, len(scanner.Bytes()))
			copy(frame, scanner.Bytes())

			s.mu.Lock()
			s.latest = frame
			s.mu.Unlock()
			once.Do(func() { close(first) })
		}

		streamErr := scanner.Err()
		if waitErr := cmd.Wait(); streamErr == nil {
			streamErr = waitErr
		}
		if streamErr == nil {
			streamErr = errors.New("camera stream ended")
		}

		s.mu.Lock()
		s.err = &ProcessError{Err: streamErr, Cmd: cmd}
		s.latest = nil
		s.mu.Unlock()
	}()

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-first:
		return s, nil
	case <-s.done:
		s.cancel()
		s.mu.RLock()
		defer s.mu.RUnlock()
		return nil, s.err
	case <-timer.C:
		s.Close()
		return nil, &ProcessError{Err: fmt.Errorf("timeout waiting for first frame after %v", timeout), Cmd: cmd}
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
}

func (s *ffmpegSource) Latest() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		if s.err != nil {
			return nil, s.err
		}
		return nil, ErrNoFrame
	}
	return s.latest, nil
}

func (s *ffmpegSource) Close() error {
	s.cancel()
	<-s.done
	s.logger.Debug("camera stream released")
	return nil
}
