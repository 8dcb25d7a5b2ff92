package submit

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Trigger is the capture control: a label and an enabled flag.
type Trigger interface {
	Label() string
	SetLabel(string)
	Enabled() bool
	SetEnabled(bool)
}

// SpinnerTrigger renders the busy state as a terminal spinner. While
// disabled, the spinner runs with the current label as its description.
type SpinnerTrigger struct {
	w io.Writer

	mu      sync.Mutex
	label   string
	enabled bool
	bar     *progressbar.ProgressBar
	stop    chan struct{}
	stopped chan struct{}
}

// NewSpinnerTrigger creates an enabled trigger with the given idle label.
func NewSpinnerTrigger(w io.Writer, label string) *SpinnerTrigger {
	return &SpinnerTrigger{w: w, label: label, enabled: true}
}

func (s *SpinnerTrigger) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *SpinnerTrigger) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	if s.bar != nil {
		s.bar.Describe(label)
	}
}

func (s *SpinnerTrigger) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *SpinnerTrigger) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled

	if !enabled {
		s.startSpinner()
		return
	}
	s.stopSpinner()
}

// startSpinner runs with s.mu held.
func (s *SpinnerTrigger) startSpinner() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(s.label),
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	stop := make(chan struct{})
	stopped := make(chan struct{})
	s.bar, s.stop, s.stopped = bar, stop, stopped

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()
}

// stopSpinner runs with s.mu held.
func (s *SpinnerTrigger) stopSpinner() {
	if s.bar == nil {
		return
	}
	close(s.stop)
	<-s.stopped
	s.bar.Finish()
	s.bar, s.stop, s.stopped = nil, nil, nil
}
