package capture

import (
	"image"
	"image/color"
)

// Brightness returns the mean luminance of region r of img: each pixel
// contributes floor((R+G+B)/3) over 8-bit non-premultiplied channels, and
// the sum is floor-divided by the pixel count. An empty region yields 0.
func Brightness(img image.Image, r image.Rectangle) int {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return 0
	}

	sum := 0
	if nrgba, ok := img.(*image.NRGBA); ok {
		// Fast path: walk the pixel buffer four bytes at a time
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(r.Min.X, y):nrgba.PixOffset(r.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				sum += (int(row[i]) + int(row[i+1]) + int(row[i+2])) / 3
			}
		}
	} else {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				sum += (int(c.R) + int(c.G) + int(c.B)) / 3
			}
		}
	}

	return sum / (r.Dx() * r.Dy())
}
