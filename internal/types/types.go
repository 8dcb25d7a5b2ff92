package types

import (
	"fmt"
	"strings"
)

// Mode selects which backend flow a submission belongs to.
type Mode int

const (
	// ModeAttendance verifies a captured face against registered users.
	ModeAttendance Mode = iota
	// ModeRegister enrolls a new user with identifier, name and department.
	ModeRegister
)

// ParseMode accepts "register" or "attendance" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "register", "registration":
		return ModeRegister, nil
	case "attendance", "verify":
		return ModeAttendance, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want register or attendance)", s)
}

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "attendance"
}

// Endpoint is the backend path the mode posts to.
func (m Mode) Endpoint() string {
	return "/" + m.String()
}

// CapturePayload is the JSON body sent to the backend.
// Registration fields are omitted entirely in attendance mode.
type CapturePayload struct {
	Image      string `json:"image"`
	UserID     string `json:"user_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

// ServerResult matches the JSON structure returned by /register and /attendance
type ServerResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Score          *float64 `json:"score,omitempty"`           // raw match score, ~50 is a perfect match
	AnnotatedImage string   `json:"annotated_image,omitempty"` // base64 JPEG, no data-URL prefix
	User           string   `json:"user,omitempty"`
}
