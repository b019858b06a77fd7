/*
Package letterbox fits arbitrary frames onto a fixed size grayscale canvas.

The source is converted to luma, scaled uniformly with an area-averaging
filter until it fits the canvas in both directions and then centred. Any space
left over is filled with a solid background so the source content is never
stretched.
*/
package letterbox

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/gift"
)

// ErrEmpty is returned for a source image with no pixels.
var ErrEmpty = errors.New("letterbox: source image is empty")

// Fit returns the scaled size of a w0 by h0 source on a w by h canvas and the
// offset at which it is placed.
func Fit(w0, h0, w, h int) (size, offset image.Point) {
	scale := math.Min(float64(w)/float64(w0), float64(h)/float64(h0))

	size.X = clamp(int(math.RoundToEven(float64(w0)*scale)), w)
	size.Y = clamp(int(math.RoundToEven(float64(h0)*scale)), h)
	offset.X = (w - size.X) / 2
	offset.Y = (h - size.Y) / 2

	return
}

func clamp(v, limit int) int {
	switch {
	case v < 1:
		return 1
	case v > limit:
		return limit
	}
	return v
}

// Scale renders src onto a new w by h canvas filled with bg.
func Scale(src image.Image, w, h int, bg uint8) (*image.Gray, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}

	canvas := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Gray{Y: bg}), image.Point{}, draw.Src)

	size, offset := Fit(b.Dx(), b.Dy(), w, h)

	g := gift.New(
		gift.Grayscale(),
		gift.Resize(size.X, size.Y, gift.BoxResampling),
	)
	g.DrawAt(canvas, src, offset, gift.CopyOperator)

	return canvas, nil
}
