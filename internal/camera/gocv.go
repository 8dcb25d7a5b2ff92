//go:build gocv

package camera

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// gocvSource reads frames from an OpenCV VideoCapture on demand.
type gocvSource struct {
	webcam *gocv.VideoCapture
	img    gocv.Mat
	mu     sync.Mutex // VideoCapture and Mat are not safe for concurrent use
	logger *logrus.Logger
}

func openGoCV(cfg Config, logger *logrus.Logger) (Source, error) {
	// Numeric devices are camera indexes, anything else is a path or URL
	var device interface{} = cfg.Device
	if idx, err := strconv.Atoi(cfg.Device); err == nil {
		device = idx
	}

	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open video capture %v: %w", device, err)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	s := &gocvSource{webcam: webcam, img: gocv.NewMat(), logger: logger}

	// Make sure the device actually delivers frames before reporting success
	if _, err := s.Latest(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *gocvSource) Latest() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok := s.webcam.Read(&s.img); !ok || s.img.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, s.img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes points into C memory released by buf.Close
	frame := make([]byte, buf.Len())
	copy(frame, buf.GetBytes())
	return frame, nil
}

func (s *gocvSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img.Close()
	return s.webcam.Close()
}
