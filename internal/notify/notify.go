// Package notify presents transient toasts and annotated-image previews.
//
// A Presenter owns the lifetime of every notification (shown, fading,
// removed) and fans each transition out to its sinks: the terminal, and the
// web dashboard when one is running. Toasts are never deduplicated or
// throttled; any number may be active at once.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Severity of a toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Icon is the Font Awesome icon class used by the dashboard.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "fa-circle-check"
	case SeverityError:
		return "fa-triangle-exclamation"
	}
	return "fa-circle-info"
}

// Glyph is the icon used on the terminal.
func (s Severity) Glyph() string {
	switch s {
	case SeveritySuccess:
		return "✅"
	case SeverityError:
		return "⚠️ "
	}
	return "ℹ️ "
}

// Default timings.
const (
	DefaultToastDuration   = 4 * time.Second
	DefaultFadeDuration    = 300 * time.Millisecond
	DefaultPreviewDuration = 4 * time.Second
)

// Toast is one message block in the notification area.
type Toast struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Icon      string    `json:"icon"`
	Message   string    `json:"message"`
	Fading    bool      `json:"fading"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlay is a rendered annotated image (mirrored, bordered JPEG).
type Overlay struct {
	ID      string
	Success bool
	JPEG    []byte
}

// Sink renders notifications somewhere.
type Sink interface {
	ShowToast(t Toast)
	FadeToast(t Toast)
	RemoveToast(id string)
	ShowOverlay(o Overlay) error
	RemoveOverlay(id string)
}

// Presenter schedules notification lifetimes and dispatches to sinks.
type Presenter struct {
	toastDuration   time.Duration
	fadeDuration    time.Duration
	previewDuration time.Duration
	schedule        func(time.Duration, func())
	logger          *logrus.Logger

	mu       sync.Mutex
	sinks    []Sink
	toasts   []*Toast
	overlays int
	pending  sync.WaitGroup
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithDurations overrides the toast, fade and preview durations. Zero keeps the default.
func WithDurations(toast, fade, preview time.Duration) Option {
	return func(p *Presenter) {
		if toast > 0 {
			p.toastDuration = toast
		}
		if fade > 0 {
			p.fadeDuration = fade
		}
		if preview > 0 {
			p.previewDuration = preview
		}
	}
}

// WithScheduler replaces time.AfterFunc; tests use it to drive expiry by hand.
func WithScheduler(schedule func(time.Duration, func())) Option {
	return func(p *Presenter) { p.schedule = schedule }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Presenter) { p.logger = l }
}

// WithSink adds a sink at construction time.
func WithSink(s Sink) Option {
	return func(p *Presenter) { p.sinks = append(p.sinks, s) }
}

// NewPresenter creates a Presenter with the default timings.
func NewPresenter(opts ...Option) *Presenter {
	p := &Presenter{
		toastDuration:   DefaultToastDuration,
		fadeDuration:    DefaultFadeDuration,
		previewDuration: DefaultPreviewDuration,
		schedule:        func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		logger:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSink attaches a sink; it only sees notifications raised afterwards.
func (p *Presenter) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

func (p *Presenter) snapshotSinks() []Sink {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sink(nil), p.sinks...)
}

// Toast shows a message and schedules its fade-out and removal. It returns the toast ID.
func (p *Presenter) Toast(sev Severity, message string) string {
	t := &Toast{
		ID:        uuid.NewString(),
		Severity:  sev,
		Icon:      sev.Icon(),
		Message:   message,
		CreatedAt: time.Now(),
	}

	p.mu.Lock()
	p.toasts = append(p.toasts, t)
	p.mu.Unlock()
	p.pending.Add(1)

	for _, s := range p.snapshotSinks() {
		s.ShowToast(*t)
	}

	p.schedule(p.toastDuration, func() {
		p.mu.Lock()
		t.Fading = true
		faded := *t
		p.mu.Unlock()
		for _, s := range p.snapshotSinks() {
			s.FadeToast(faded)
		}

		// Removed once the fade animation has run
		p.schedule(p.fadeDuration, func() {
			p.removeToast(t.ID)
			for _, s := range p.snapshotSinks() {
				s.RemoveToast(t.ID)
			}
			p.pending.Done()
		})
	})

	return t.ID
}

func (p *Presenter) removeToast(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, t := range p.toasts {
		if t.ID == id {
			p.toasts = append(p.toasts[:i], p.toasts[i+1:]...)
			return
		}
	}
}

// Active returns the toasts currently on screen, oldest first.
func (p *Presenter) Active() []Toast {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Toast, len(p.toasts))
	for i, t := range p.toasts {
		out[i] = *t
	}
	return out
}

// Overlay renders a base64 annotated image with a success or error border,
// shows it for the preview duration and then removes it.
func (p *Presenter) Overlay(annotatedB64 string, success bool) error {
	img, err := RenderOverlay(annotatedB64, success)
	if err != nil {
		p.logger.WithError(err).Warn("annotated image could not be rendered")
		return err
	}

	o := Overlay{ID: uuid.NewString(), Success: success, JPEG: img}

	p.mu.Lock()
	p.overlays++
	p.mu.Unlock()
	p.pending.Add(1)

	for _, s := range p.snapshotSinks() {
		if err := s.ShowOverlay(o); err != nil {
			p.logger.WithError(err).Warn("preview sink failed")
		}
	}

	p.schedule(p.previewDuration, func() {
		for _, s := range p.snapshotSinks() {
			s.RemoveOverlay(o.ID)
		}
		p.mu.Lock()
		p.overlays--
		p.mu.Unlock()
		p.pending.Done()
	})
	return nil
}

// Overlays returns how many previews are currently shown.
func (p *Presenter) Overlays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlays
}

// Wait blocks until every shown notification has expired, or ctx is done.
func (p *Presenter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
