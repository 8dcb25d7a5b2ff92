package cmd

import (
	"bufio"
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresmejia3/attend/internal/api"
	"github.com/andresmejia3/attend/internal/camera"
	"github.com/andresmejia3/attend/internal/capture"
	"github.com/andresmejia3/attend/internal/config"
	"github.com/andresmejia3/attend/internal/form"
	"github.com/andresmejia3/attend/internal/log"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/andresmejia3/attend/internal/submit"
	"github.com/andresmejia3/attend/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

func grayJPEG(t *testing.T, v uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// recorder is a fake backend that answers with a fixed body and keeps every request.
type recorder struct {
	mu       sync.Mutex
	requests []map[string]string
}

func (r *recorder) server(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		m := map[string]string{}
		jsoniter.NewDecoder(req.Body).Decode(&m)
		m["path"] = req.URL.Path
		r.mu.Lock()
		r.requests = append(r.requests, m)
		r.mu.Unlock()
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (r *recorder) all() []map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]string(nil), r.requests...)
}

func kioskController(t *testing.T, mode types.Mode, url string, out io.Writer) *submit.Controller {
	t.Helper()
	logger := log.Discard()
	presenter := notify.NewPresenter(notify.WithLogger(logger), notify.WithSink(notify.NewTerminalSink(out, "")))
	capturer := capture.New(camera.NewStill(grayJPEG(t, 128)), capture.WithLogger(logger))
	client := api.NewClient(url, 2*time.Second, logger)
	return submit.New(mode, capturer, client, presenter, submit.NewSpinnerTrigger(io.Discard, "📷 Capture"), logger)
}

func TestKioskRegisterFlow(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, 200, `{"success":true,"message":"User registered successfully!"}`)
	var out bytes.Buffer
	ctrl := kioskController(t, types.ModeRegister, srv.URL, &out)

	// Blank ID, then capture: validation fails and re-prompts from ID
	// with the other fields kept. Then a successful capture, then EOF.
	in := strings.NewReader("\nAda\nEng\n\n42\n\n\n\n")
	if err := runKiosk(context.Background(), in, &out, ctrl); err != nil {
		t.Fatalf("runKiosk: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Please enter your ID first.") {
		t.Errorf("validation toast missing:\n%s", text)
	}
	if !strings.Contains(text, "Name [Ada]: ") {
		t.Errorf("kept value not offered on re-prompt:\n%s", text)
	}
	if !strings.Contains(text, "✅ User registered successfully!") {
		t.Errorf("success toast missing:\n%s", text)
	}

	reqs := rec.all()
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(reqs))
	}
	if r := reqs[0]; r["path"] != "/register" || r["user_id"] != "42" || r["name"] != "Ada" || r["department"] != "Eng" {
		t.Errorf("request = %v", r)
	}
}

func TestKioskAttendanceRejected(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, 404, `{"success":false,"message":"User not recognized."}`)
	var out bytes.Buffer
	ctrl := kioskController(t, types.ModeAttendance, srv.URL, &out)

	in := strings.NewReader("\n\nq\n\n")
	if err := runKiosk(context.Background(), in, &out, ctrl); err != nil {
		t.Fatalf("runKiosk: %v", err)
	}

	if n := len(rec.all()); n != 2 {
		t.Errorf("Expected 2 submissions before quit, got %d", n)
	}
	if c := strings.Count(out.String(), "User not recognized."); c != 2 {
		t.Errorf("Expected 2 rejection toasts, got %d:\n%s", c, out.String())
	}
}

func TestKioskStopsOnContext(t *testing.T) {
	var out bytes.Buffer
	ctrl := kioskController(t, types.ModeAttendance, "http://127.0.0.1:0", &out)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- runKiosk(ctx, pr, &out, ctrl) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runKiosk: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("kiosk did not stop on cancel")
	}
}

func TestPromptFields(t *testing.T) {
	answers := []string{"Grace", ""}
	var prompts []string
	read := func(p string) (string, error) {
		prompts = append(prompts, p)
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}

	fields := form.Fields{UserID: "7", Name: "", Department: "Ops"}
	if err := promptFields(read, &fields, form.FieldName); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Name: ", "Department [Ops]: "}; strings.Join(prompts, "|") != strings.Join(want, "|") {
		t.Errorf("prompts = %q, want %q", prompts, want)
	}
	if fields != (form.Fields{UserID: "7", Name: "Grace", Department: "Ops"}) {
		t.Errorf("fields = %+v", fields)
	}
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var opts Options
	cmd.Flags().StringVar(&opts.ServerURL, "server", "", "")
	cmd.Flags().StringVar(&opts.CameraImage, "image", "", "")
	cmd.Flags().IntVar(&opts.MinBrightness, "min-brightness", 0, "")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "")
	if err := cmd.Flags().Parse([]string{"--server", "http://flag:1", "--image", "face.jpg"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.LogLevel = "debug"
	applyFlags(cmd, &cfg, opts)

	if cfg.ServerURL != "http://flag:1" {
		t.Errorf("server = %q", cfg.ServerURL)
	}
	if cfg.Camera.Backend != camera.BackendFile || cfg.Camera.Image != "face.jpg" {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	// Unset flags keep file/env values
	if cfg.LogLevel != "debug" || cfg.MinBrightness != 0 {
		t.Errorf("unset flags overrode config: %+v", cfg)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "Sure?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "attend.log")
	for _, name := range []string{"attend.log", "attend-2026-01-02T10-00-00.000.log.gz", "other.log"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}

	got := logFiles(file)
	if len(got) != 2 || got[0] != file || !strings.HasSuffix(got[1], ".log.gz") {
		t.Errorf("logFiles = %v", got)
	}
}

func TestSessionWithoutCamera(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, 200, `{"success":true,"message":"ok"}`)

	cfg := config.Default()
	cfg.ServerURL = srv.URL
	cfg.Camera = camera.Config{Backend: camera.BackendFile, Image: filepath.Join(t.TempDir(), "missing.jpg")}

	var out bytes.Buffer
	s := newSession(context.Background(), cfg, log.Discard(), &out)
	defer s.Close()

	if !strings.Contains(out.String(), submit.MsgCameraFailed) {
		t.Errorf("camera failure toast missing:\n%s", out.String())
	}

	// The kiosk keeps working; every capture reports no frame
	ctrl := s.controller(types.ModeAttendance, submit.NewSpinnerTrigger(io.Discard, "📷 Capture"))
	if res := ctrl.Submit(context.Background(), nil); res.Outcome != submit.OutcomeNoFrame {
		t.Errorf("Outcome = %v, want no-frame", res.Outcome)
	}
	if !strings.Contains(out.String(), submit.MsgNoFrame) {
		t.Errorf("no-frame toast missing:\n%s", out.String())
	}
	if n := len(rec.all()); n != 0 {
		t.Errorf("Expected no request without a frame, got %d", n)
	}
}
