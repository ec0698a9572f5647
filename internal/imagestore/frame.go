package imagestore

import (
	"image"
	"image/color"

	"pagesig/internal/signature"
)

// Frame samples colours from a decoded image. Channels beyond RGB are
// ignored; alpha is undone so partially transparent pixels report their
// stored colour.
type Frame struct {
	img         image.Image
	bounds      image.Rectangle
	swapRedBlue bool
}

// NewFrame wraps img. swapRedBlue exchanges the red and blue channels of
// every sample.
func NewFrame(img image.Image, swapRedBlue bool) *Frame {
	return &Frame{img: img, bounds: img.Bounds(), swapRedBlue: swapRedBlue}
}

// Bounds returns the image bounds.
func (f *Frame) Bounds() image.Rectangle { return f.bounds }

// ColorAt returns the colour at (x, y) relative to the top-left corner.
func (f *Frame) ColorAt(x, y int) signature.Color {
	px := f.bounds.Min.X + x
	py := f.bounds.Min.Y + y

	var c color.NRGBA
	switch img := f.img.(type) {
	case *image.NRGBA:
		c = img.NRGBAAt(px, py)
	default:
		c = color.NRGBAModel.Convert(f.img.At(px, py)).(color.NRGBA)
	}

	if f.swapRedBlue {
		return signature.Color{R: c.B, G: c.G, B: c.R}
	}
	return signature.Color{R: c.R, G: c.G, B: c.B}
}
