/*
Package mono implements a 1-bit image where every pixel is either on or off.

A Bitmap is the intermediate form between dithering and page packing. An on
pixel is bright and reads back as white (0xff) through the image.Image
interface, an off pixel reads back as black, so a Bitmap can be handed
straight to image/png to produce a single-channel preview.
*/
package mono

import (
	"image"
	"image/color"
)

// Bitmap is an in-memory 1-bit image.
type Bitmap struct {
	// Pix holds one entry per pixel, true meaning on. The pixel at (x, y)
	// starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix    []bool
	Stride int
	Rect   image.Rectangle
}

// New returns a new Bitmap with the given bounds and every pixel off.
func New(r image.Rectangle) *Bitmap {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Bitmap{Rect: r}
	}
	return &Bitmap{
		Pix:    make([]bool, w*h),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel returns color.GrayModel so that encoders pick a single channel.
func (b *Bitmap) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds returns the domain for which At can return non-zero color.
func (b *Bitmap) Bounds() image.Rectangle {
	return b.Rect
}

// At returns color.Gray{0xff} for on pixels and color.Gray{0} otherwise.
func (b *Bitmap) At(x, y int) color.Color {
	if b.BitAt(x, y) {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{}
}

// BitAt reports whether the pixel at (x, y) is on.
func (b *Bitmap) BitAt(x, y int) bool {
	if !(image.Point{X: x, Y: y}.In(b.Rect)) {
		return false
	}
	return b.Pix[b.offset(x, y)]
}

// Set thresholds c at the midpoint of its gray value.
func (b *Bitmap) Set(x, y int, c color.Color) {
	g := color.GrayModel.Convert(c).(color.Gray)
	b.SetBit(x, y, g.Y >= 0x80)
}

// SetBit sets the pixel at (x, y).
func (b *Bitmap) SetBit(x, y int, on bool) {
	if !(image.Point{X: x, Y: y}.In(b.Rect)) {
		return
	}
	b.Pix[b.offset(x, y)] = on
}

// Invert flips every pixel.
func (b *Bitmap) Invert() {
	for i := range b.Pix {
		b.Pix[i] = !b.Pix[i]
	}
}

// Count returns the number of on pixels.
func (b *Bitmap) Count() int {
	var n int
	for _, on := range b.Pix {
		if on {
			n++
		}
	}
	return n
}

func (b *Bitmap) offset(x, y int) int {
	return (y-b.Rect.Min.Y)*b.Stride + (x - b.Rect.Min.X)
}
