package notify

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// PreviewFile is the name of the overlay written to the preview directory.
const PreviewFile = "overlay.jpg"

// TerminalSink prints toasts as single lines and writes previews to disk
// for the lifetime of the overlay.
type TerminalSink struct {
	w          io.Writer
	previewDir string

	mu      sync.Mutex
	current string // ID of the overlay currently on disk
}

// NewTerminalSink writes toasts to w. An empty previewDir skips writing previews.
func NewTerminalSink(w io.Writer, previewDir string) *TerminalSink {
	return &TerminalSink{w: w, previewDir: previewDir}
}

// PreviewPath is where the current overlay is written.
func (s *TerminalSink) PreviewPath() string {
	if s.previewDir == "" {
		return ""
	}
	return filepath.Join(s.previewDir, PreviewFile)
}

func (s *TerminalSink) ShowToast(t Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", t.Severity.Glyph(), t.Message)
}

func (s *TerminalSink) FadeToast(Toast) {}

func (s *TerminalSink) RemoveToast(string) {}

func (s *TerminalSink) ShowOverlay(o Overlay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.previewDir == "" {
		fmt.Fprintf(s.w, "🖼️  Annotated preview received (%d KB)\n", len(o.JPEG)/1024)
		return nil
	}

	if err := os.MkdirAll(s.previewDir, 0755); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}
	// Write then rename so viewers never see a half-written file
	tmp := filepath.Join(s.previewDir, "."+PreviewFile+".tmp")
	if err := os.WriteFile(tmp, o.JPEG, 0644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	if err := os.Rename(tmp, s.PreviewPath()); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	s.current = o.ID
	fmt.Fprintf(s.w, "🖼️  Preview: %s\n", s.PreviewPath())
	return nil
}

func (s *TerminalSink) RemoveOverlay(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer overlay may have replaced this one already
	if s.current != id || s.previewDir == "" {
		return
	}
	os.Remove(s.PreviewPath())
	s.current = ""
}
