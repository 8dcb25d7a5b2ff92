package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// --- 1. Process Safety & Command Wrapping ---

// SafeCommand wraps a standard exec.Cmd with a buffer to catch Stderr (ffmpeg logs)
// This ensures we don't lose the reason a camera process died.
type SafeCommand struct {
	*exec.Cmd
	Stderr *bytes.Buffer
}

// NewSafeCommand initializes a command and attaches a buffer to its Stderr pipe
// It prepares the command for execution but does not start it.
func NewSafeCommand(ctx context.Context, name string, args ...string) *SafeCommand {
	cmd := exec.CommandContext(ctx, name, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	return &SafeCommand{Cmd: cmd, Stderr: stderr}
}

// ShowError prints a formatted error box and dumps process logs if a SafeCommand is provided.
func ShowError(context string, err error, s *SafeCommand) {
	FprintError(os.Stderr, context, err, s)
}

// FprintError writes the ShowError box to w.
func FprintError(w io.Writer, context string, err error, s *SafeCommand) {
	fmt.Fprintf(w, "\n---------------------------------------------------------\n")
	fmt.Fprintf(w, "🚨 ATTEND ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(w, "DETAILS: %v\n", err)
	}

	// If we have a SafeCommand and it captured logs, print them.
	if s != nil && s.Stderr.Len() > 0 {
		fmt.Fprintf(w, "\nPROCESS LOGS:\n%s\n", s.Stderr.String())
	}
	fmt.Fprintf(w, "---------------------------------------------------------\n")
}

// Die is the unified exit strategy for unrecoverable setup failures.
func Die(context string, err error, s *SafeCommand) {
	ShowError(context, err, s)
	os.Exit(1)
}

// --- 2. Camera Engine ---

var (
	JpegSOI = []byte{0xFF, 0xD8} // Start of Image
	JpegEOI = []byte{0xFF, 0xD9} // End of Image
)

// SplitJpeg is the custom splitter for bufio.Scanner
// It locates the Start Of Image (FFD8) and End Of Image (FFD9) markers to extract full JPEG frames.
func SplitJpeg(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := bytes.Index(data, JpegSOI)
	if start == -1 {
		return 0, nil, nil
	}
	end := bytes.Index(data[start:], JpegEOI)
	if end == -1 {
		return 0, nil, nil
	}
	return start + end + 2, data[start : start+end+2], nil
}

// FFmpegCaptureArgs builds the argument list for reading a live camera and
// writing MJPEG frames to Stdout. format is the ffmpeg input device
// (v4l2, avfoundation, dshow); width/height of 0 keep the device default.
func FFmpegCaptureArgs(format, device string, width, height, fps int) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if format != "" {
		args = append(args, "-f", format)
	}
	if width > 0 && height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", width, height))
	}
	if fps > 0 {
		args = append(args, "-framerate", strconv.Itoa(fps))
	}
	// -q:v 2 keeps the intermediate MJPEG close to lossless; the capturer re-encodes.
	return append(args, "-i", device, "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "2", "-")
}

// NewFFmpegCaptureCmd creates the camera decoder pipe.
func NewFFmpegCaptureCmd(ctx context.Context, format, device string, width, height, fps int) *SafeCommand {
	return NewSafeCommand(ctx, "ffmpeg", FFmpegCaptureArgs(format, device, width, height, fps)...)
}
