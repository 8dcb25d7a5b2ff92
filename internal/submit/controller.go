// Package submit runs one capture-and-submit cycle per trigger: validate,
// capture, POST, present the result, and restore the trigger.
package submit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/andresmejia3/attend/internal/capture"
	"github.com/andresmejia3/attend/internal/form"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/andresmejia3/attend/internal/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// User-facing messages.
const (
	BusyLabel       = "⏳ Processing..."
	MsgConnection   = "Server connection error."
	MsgNoFrame      = "No camera frame available."
	MsgTooDark      = "Lighting is too dark! Please move to a brighter area."
	MsgCameraFailed = "Access to camera denied or failed."
)

// perfectScore is the raw score that maps to a 100% match.
const perfectScore = 50.0

// Outcome says which branch a submission attempt ended in.
type Outcome int

const (
	OutcomeSuccess        Outcome = iota // server accepted
	OutcomeRejected                      // server answered success=false
	OutcomeTransportError                // network failure or non-JSON body
	OutcomeInvalid                       // a registration field is missing
	OutcomeNoFrame                       // nothing to capture
	OutcomeTooDark                       // below the configured brightness
	OutcomeBusy                          // another submission is in flight
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport-error"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNoFrame:
		return "no-frame"
	case OutcomeTooDark:
		return "too-dark"
	case OutcomeBusy:
		return "busy"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result describes a finished attempt.
type Result struct {
	Outcome Outcome
	Focus   form.Field          // field to focus after a validation error
	Server  *types.ServerResult // nil unless the backend answered
	Err     error
}

// Capturer produces the still to submit.
type Capturer interface {
	Capture() (*capture.Frame, error)
}

// Submitter performs the HTTP exchange.
type Submitter interface {
	Submit(ctx context.Context, mode types.Mode, payload types.CapturePayload, requestID string) (*types.ServerResult, error)
}

// Notifier presents toasts and annotated previews.
type Notifier interface {
	Toast(sev notify.Severity, message string) string
	Overlay(annotatedB64 string, success bool) error
}

// Controller composes the capture pipeline for one mode.
type Controller struct {
	mode     types.Mode
	capturer Capturer
	client   Submitter
	notifier Notifier
	trigger  Trigger
	logger   *logrus.Logger

	inFlight sync.Mutex
}

// New creates a Controller. The mode is fixed for its lifetime.
func New(mode types.Mode, capturer Capturer, client Submitter, notifier Notifier, trigger Trigger, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		mode:     mode,
		capturer: capturer,
		client:   client,
		notifier: notifier,
		trigger:  trigger,
		logger:   logger,
	}
}

// Mode returns the controller's mode.
func (c *Controller) Mode() types.Mode { return c.mode }

// MatchPercent maps a raw score onto 0-100, where 50 is a perfect match.
// Halves round up, like JavaScript's Math.round.
func MatchPercent(score float64) int {
	p := math.Floor(score/perfectScore*100 + 0.5)
	return int(math.Min(p, 100))
}

// Submit runs one attempt. fields is only read (and cleared on success) in
// register mode and may be nil in attendance mode.
func (c *Controller) Submit(ctx context.Context, fields *form.Fields) Result {
	// A second trigger while one is in flight is ignored
	if !c.inFlight.TryLock() {
		return Result{Outcome: OutcomeBusy}
	}
	defer c.inFlight.Unlock()

	payload := types.CapturePayload{}
	if c.mode == types.ModeRegister {
		if fields == nil {
			fields = &form.Fields{}
		}
		if err := form.Validate(*fields); err != nil {
			var ferr *form.Error
			if errors.As(err, &ferr) {
				c.notifier.Toast(notify.SeverityError, ferr.Message)
				return Result{Outcome: OutcomeInvalid, Focus: ferr.Field, Err: err}
			}
			c.notifier.Toast(notify.SeverityError, err.Error())
			return Result{Outcome: OutcomeInvalid, Err: err}
		}
		trimmed := fields.Trimmed()
		payload.UserID = trimmed.UserID
		payload.Name = trimmed.Name
		payload.Department = trimmed.Department
	}

	frame, err := c.capturer.Capture()
	if err != nil {
		if errors.Is(err, capture.ErrTooDark) {
			c.notifier.Toast(notify.SeverityError, MsgTooDark)
			return Result{Outcome: OutcomeTooDark, Err: err}
		}
		c.logger.WithError(err).Warn("capture failed")
		c.notifier.Toast(notify.SeverityError, MsgNoFrame)
		return Result{Outcome: OutcomeNoFrame, Err: err}
	}
	payload.Image = frame.DataURL

	// Busy state, restored on every exit path below
	origLabel, origEnabled := c.trigger.Label(), c.trigger.Enabled()
	c.trigger.SetEnabled(false)
	c.trigger.SetLabel(BusyLabel)
	defer func() {
		c.trigger.SetLabel(origLabel)
		c.trigger.SetEnabled(origEnabled)
	}()

	requestID := uuid.NewString()
	entry := c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"mode":       c.mode.String(),
		"width":      frame.Width,
		"height":     frame.Height,
	})
	entry.Info("submitting capture")

	res, err := c.client.Submit(ctx, c.mode, payload, requestID)
	if err != nil {
		entry.WithError(err).Error("submission failed")
		c.notifier.Toast(notify.SeverityError, MsgConnection)
		return Result{Outcome: OutcomeTransportError, Err: err}
	}

	if !res.Success {
		c.notifier.Toast(notify.SeverityError, res.Message)
		if res.AnnotatedImage != "" {
			if err := c.notifier.Overlay(res.AnnotatedImage, false); err != nil {
				entry.WithError(err).Warn("annotated preview not shown")
			}
		}
		entry.WithField("message", res.Message).Info("submission rejected")
		return Result{Outcome: OutcomeRejected, Server: res}
	}

	msg := res.Message
	// A zero score gets no suffix, same as an absent one
	if res.Score != nil && *res.Score != 0 {
		msg += fmt.Sprintf(" (%d%% Match)", MatchPercent(*res.Score))
	}
	c.notifier.Toast(notify.SeveritySuccess, msg)
	if res.AnnotatedImage != "" {
		if err := c.notifier.Overlay(res.AnnotatedImage, true); err != nil {
			entry.WithError(err).Warn("annotated preview not shown")
		}
	}

	if c.mode == types.ModeRegister {
		fields.Clear()
	}
	if res.User != "" {
		entry = entry.WithField("user", res.User)
	}
	entry.WithField("message", res.Message).Info("submission accepted")
	return Result{Outcome: OutcomeSuccess, Server: res}
}
