package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresmejia3/attend/internal/log"
	"github.com/andresmejia3/attend/internal/types"
)

func TestSubmitRegister(t *testing.T) {
	var gotPath, gotType, gotID string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get("X-Request-ID")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"success": true, "message": "User registered successfully!", "annotated_image": "abcd"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, log.Discard())
	payload := types.CapturePayload{Image: "data:image/jpeg;base64,AAAA", UserID: "42", Name: "Ada", Department: "R&D"}
	res, err := c.Submit(context.Background(), types.ModeRegister, payload, "req-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if gotPath != "/register" {
		t.Errorf("path = %q, want /register", gotPath)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotID != "req-1" {
		t.Errorf("X-Request-ID = %q", gotID)
	}
	for _, k := range []string{"image", "user_id", "name", "department"} {
		if _, ok := gotBody[k]; !ok {
			t.Errorf("body missing %q: %v", k, gotBody)
		}
	}
	if !res.Success || res.Message != "User registered successfully!" || res.AnnotatedImage != "abcd" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Score != nil {
		t.Errorf("Score should be absent, got %v", *res.Score)
	}
}

func TestSubmitAttendanceOnlyImage(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		// The backend reports "no match" with a 404 and a JSON body
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "message": "No match found.", "score": 12}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, log.Discard())
	res, err := c.Submit(context.Background(), types.ModeAttendance, types.CapturePayload{Image: "data:image/jpeg;base64,AAAA"}, "")
	if err != nil {
		t.Fatalf("A JSON failure body must not be a transport error: %v", err)
	}
	if len(gotBody) != 1 {
		t.Errorf("attendance body should only carry image, got %v", gotBody)
	}
	if res.Success || res.Message != "No match found." {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Score == nil || *res.Score != 12 {
		t.Errorf("Score = %v, want 12", res.Score)
	}
}

func TestSubmitTransportErrors(t *testing.T) {
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer html.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	for name, url := range map[string]string{"non-JSON body": html.URL, "connection refused": closedURL} {
		t.Run(name, func(t *testing.T) {
			c := NewClient(url, time.Second, log.Discard())
			_, err := c.Submit(context.Background(), types.ModeAttendance, types.CapturePayload{Image: "x"}, "")
			if !errors.Is(err, ErrTransport) {
				t.Errorf("Expected ErrTransport, got %v", err)
			}
		})
	}
}
