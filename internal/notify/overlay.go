package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"strings"
)

const borderWidth = 2

var (
	successColor = color.NRGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
	errorColor   = color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
)

// RenderOverlay decodes a base64 image (raw, or with a data-URL prefix),
// mirrors it horizontally so it reads like the user's own camera view, and
// frames it with a success or error border.
func RenderOverlay(b64 string, success bool) ([]byte, error) {
	if i := strings.Index(b64, ","); strings.HasPrefix(b64, "data:") && i >= 0 {
		b64 = b64[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("decode annotated image: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode annotated image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(w-1-x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	border := errorColor
	if success {
		border = successColor
	}
	drawBorder(out, border, borderWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBorder(img *image.NRGBA, c color.Color, width int) {
	b := img.Bounds()
	u := image.NewUniform(c)
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width), // top
		image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y), // bottom
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y), // left
		image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y), // right
	} {
		draw.Draw(img, r.Intersect(b), u, image.Point{}, draw.Src)
	}
}
