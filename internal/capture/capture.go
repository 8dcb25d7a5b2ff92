// Package capture turns the camera's current frame into the still image
// submitted to the backend.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png" // still images for the file backend may be PNG

	"github.com/sirupsen/logrus"
)

// DataURLPrefix is prepended to the base64 JPEG, like canvas.toDataURL('image/jpeg').
const DataURLPrefix = "data:image/jpeg;base64,"

// DefaultQuality matches the browser default for image/jpeg data URLs.
const DefaultQuality = 92

var (
	// ErrNoFrame means there is no video surface or it has not produced a frame.
	ErrNoFrame = errors.New("no camera frame available")
	// ErrTooDark is returned only when a minimum brightness is configured.
	ErrTooDark = errors.New("lighting is too dark")
)

// FrameSource is the live video surface. camera.Source satisfies it.
type FrameSource interface {
	Latest() ([]byte, error)
}

// Frame is one captured still.
type Frame struct {
	DataURL    string
	Width      int
	Height     int
	Brightness int
}

// Capturer draws the current frame onto an offscreen surface and encodes it.
type Capturer struct {
	src           FrameSource
	quality       int
	minBrightness int
	logger        *logrus.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(c *Capturer) {
		if q >= 1 && q <= 100 {
			c.quality = q
		}
	}
}

// WithMinBrightness enables rejection of frames darker than min. 0 disables it.
func WithMinBrightness(min int) Option {
	return func(c *Capturer) { c.minBrightness = min }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Capturer) { c.logger = l }
}

// New creates a Capturer. src may be nil when the camera could not be acquired;
// every capture then fails with ErrNoFrame.
func New(src FrameSource, opts ...Option) *Capturer {
	c := &Capturer{
		src:     src,
		quality: DefaultQuality,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture grabs the current frame at its native resolution and returns it as
// a base64 JPEG data URL.
func (c *Capturer) Capture() (*Frame, error) {
	if c.src == nil {
		return nil, ErrNoFrame
	}

	raw, err := c.src.Latest()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode frame: %v", ErrNoFrame, err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, ErrNoFrame
	}

	// Offscreen surface sized to the video's native resolution
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)

	brightness := Brightness(canvas, canvas.Bounds())
	c.logger.WithFields(logrus.Fields{
		"width":      b.Dx(),
		"height":     b.Dy(),
		"brightness": brightness,
	}).Debug("frame captured")

	if c.minBrightness > 0 && brightness < c.minBrightness {
		return nil, fmt.Errorf("%w: brightness %d below %d", ErrTooDark, brightness, c.minBrightness)
	}

	url, err := EncodeDataURL(canvas, c.quality)
	if err != nil {
		return nil, err
	}

	return &Frame{
		DataURL:    url,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Brightness: brightness,
	}, nil
}

// EncodeDataURL encodes img as a JPEG data URL.
func EncodeDataURL(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
