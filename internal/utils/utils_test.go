package utils

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSplitJpeg(t *testing.T) {
	// Construct a stream containing: [Garbage] [JPEG] [Garbage]
	// SOI (Start of Image): FF D8
	// EOI (End of Image):   FF D9

	jpegData := []byte{0xFF, 0xD8, 0x01, 0x02, 0x03, 0xFF, 0xD9}

	streamData := []byte{0x00, 0x00} // Garbage at start
	streamData = append(streamData, jpegData...)
	streamData = append(streamData, []byte{0x00, 0x00}...) // Garbage at end

	scanner := bufio.NewScanner(bytes.NewReader(streamData))
	scanner.Split(SplitJpeg)

	if !scanner.Scan() {
		t.Fatal("Expected to find a token, got EOF")
	}
	if !bytes.Equal(scanner.Bytes(), jpegData) {
		t.Errorf("Expected %X, got %X", jpegData, scanner.Bytes())
	}

	// The trailing garbage is not a JPEG
	if scanner.Scan() {
		t.Error("Expected only one token, found more")
	}
}

func TestSplitJpegBackToBack(t *testing.T) {
	a := []byte{0xFF, 0xD8, 0xAA, 0xFF, 0xD9}
	b := []byte{0xFF, 0xD8, 0xBB, 0xBB, 0xFF, 0xD9}
	scanner := bufio.NewScanner(bytes.NewReader(append(append([]byte{}, a...), b...)))
	scanner.Split(SplitJpeg)

	var got [][]byte
	for scanner.Scan() {
		got = append(got, append([]byte{}, scanner.Bytes()...))
	}
	if len(got) != 2 || !bytes.Equal(got[0], a) || !bytes.Equal(got[1], b) {
		t.Errorf("Expected two frames %X %X, got %X", a, b, got)
	}
}

func TestFFmpegCaptureArgs(t *testing.T) {
	got := FFmpegCaptureArgs("v4l2", "/dev/video0", 640, 480, 15)
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2",
		"-video_size", "640x480",
		"-framerate", "15",
		"-i", "/dev/video0",
		"-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "2", "-",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FFmpegCaptureArgs() = %v\nwant %v", got, want)
	}

	// Device defaults: no format, size or framerate flags
	got = FFmpegCaptureArgs("", "0", 0, 0, 0)
	want = []string{"-hide_banner", "-loglevel", "error", "-i", "0", "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "2", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FFmpegCaptureArgs() = %v\nwant %v", got, want)
	}
}

func TestFprintError(t *testing.T) {
	cmd := NewSafeCommand(context.Background(), "ffmpeg")
	cmd.Stderr.WriteString("/dev/video0: Device or resource busy")

	tests := []struct {
		name     string
		cmd      *SafeCommand
		wantLogs bool
	}{
		{"Without process", nil, false},
		{"With process logs", cmd, true},
		{"Process without output", NewSafeCommand(context.Background(), "ffmpeg"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			FprintError(&out, "Camera unavailable", errors.New("exit status 1"), tt.cmd)

			got := out.String()
			if !strings.Contains(got, "ATTEND ERROR: Camera unavailable") || !strings.Contains(got, "DETAILS: exit status 1") {
				t.Errorf("missing header or details:\n%s", got)
			}
			if hasLogs := strings.Contains(got, "PROCESS LOGS:"); hasLogs != tt.wantLogs {
				t.Errorf("PROCESS LOGS shown = %v, want %v:\n%s", hasLogs, tt.wantLogs, got)
			}
			if tt.wantLogs && !strings.Contains(got, "Device or resource busy") {
				t.Errorf("process stderr not dumped:\n%s", got)
			}
		})
	}
}
