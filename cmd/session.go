package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/andresmejia3/attend/internal/api"
	"github.com/andresmejia3/attend/internal/camera"
	"github.com/andresmejia3/attend/internal/capture"
	"github.com/andresmejia3/attend/internal/config"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/andresmejia3/attend/internal/submit"
	"github.com/andresmejia3/attend/internal/types"
	"github.com/sirupsen/logrus"
)

// session wires the camera, capturer, notifier and backend client for one
// run of a capture command.
type session struct {
	cfg       config.Config
	logger    *logrus.Logger
	source    camera.Source // nil when the camera could not be acquired
	capturer  *capture.Capturer
	presenter *notify.Presenter
	terminal  *notify.TerminalSink
	client    *api.Client
}

// newSession acquires the camera. A camera failure is reported as a toast
// and is not fatal: every later capture then fails with no frame.
func newSession(ctx context.Context, cfg config.Config, logger *logrus.Logger, out io.Writer) *session {
	s := &session{cfg: cfg, logger: logger}

	s.terminal = notify.NewTerminalSink(out, cfg.PreviewDir)
	s.presenter = notify.NewPresenter(
		notify.WithDurations(cfg.ToastDuration, 0, cfg.PreviewDuration),
		notify.WithLogger(logger),
		notify.WithSink(s.terminal),
	)

	src, err := camera.Open(ctx, cfg.Camera, logger)
	if err != nil {
		entry := logger.WithError(err)
		if proc := camera.Process(err); proc != nil {
			entry = entry.WithField("process_logs", strings.TrimSpace(proc.Stderr.String()))
		}
		entry.Error("camera unavailable")
		s.presenter.Toast(notify.SeverityError, submit.MsgCameraFailed)
	} else {
		s.source = src
	}

	opts := []capture.Option{
		capture.WithQuality(cfg.JPEGQuality),
		capture.WithMinBrightness(cfg.MinBrightness),
		capture.WithLogger(logger),
	}
	if s.source != nil {
		s.capturer = capture.New(s.source, opts...)
	} else {
		s.capturer = capture.New(nil, opts...)
	}

	s.client = api.NewClient(cfg.ServerURL, cfg.RequestTimeout, logger)
	return s
}

func (s *session) controller(mode types.Mode, trigger submit.Trigger) *submit.Controller {
	return submit.New(mode, s.capturer, s.client, s.presenter, trigger, s.logger)
}

// Close releases the camera.
func (s *session) Close() {
	if s.source == nil {
		return
	}
	if err := s.source.Close(); err != nil {
		s.logger.WithError(err).Warn("failed to release camera")
	}
}
