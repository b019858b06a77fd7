/*
Package dither reduces grayscale images to 1-bit using Floyd-Steinberg error
diffusion.

Samples are normalised to [0, 1] and held in a float32 error buffer that is
private to a single call. Each pixel is thresholded at 0.5 and the
quantisation error is pushed onto the neighbours that have not been visited
yet:

	        *   7
	    3   5   1      (/16)

With serpentine scanning odd rows run right to left and the kernel is
mirrored, so "forward" always means the next pixel in scan order. Error that
would land outside the image is discarded.
*/
package dither

import (
	"image"

	"github.com/bodgit/oledmovie/mono"
)

const threshold = 0.5

const (
	weightForward      float32 = 7.0 / 16.0
	weightBelowBehind  float32 = 3.0 / 16.0
	weightBelow        float32 = 5.0 / 16.0
	weightBelowForward float32 = 1.0 / 16.0
)

// FloydSteinberg dithers m to a bitmap with the same bounds. When serpentine
// is false every row is scanned left to right.
func FloydSteinberg(m *image.Gray, serpentine bool) *mono.Bitmap {
	r := m.Bounds()
	w, h := r.Dx(), r.Dy()

	f := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		for x, v := range row {
			f[y*w+x] = float32(v) / 255
		}
	}

	out := mono.New(r)
	diffuse(f, w, h, serpentine, func(x, y int) {
		out.SetBit(r.Min.X+x, r.Min.Y+y, true)
	})

	return out
}

// diffuse runs the error diffusion over f in place, calling on for every
// pixel that quantises to 1.
func diffuse(f []float32, w, h int, serpentine bool, on func(x, y int)) {
	for y := 0; y < h; y++ {
		x, end, dir := 0, w, 1
		if serpentine && y%2 == 1 {
			x, end, dir = w-1, -1, -1
		}

		for ; x != end; x += dir {
			old := f[y*w+x]
			var v float32
			if old >= threshold {
				v = 1
				on(x, y)
			}
			e := old - v

			if xn := x + dir; xn >= 0 && xn < w {
				f[y*w+xn] += float32(e * weightForward)
			}

			if y+1 >= h {
				continue
			}
			below := (y + 1) * w
			if xb := x - dir; xb >= 0 && xb < w {
				f[below+xb] += float32(e * weightBelowBehind)
			}
			f[below+x] += float32(e * weightBelow)
			if xf := x + dir; xf >= 0 && xf < w {
				f[below+xf] += float32(e * weightBelowForward)
			}
		}
	}
}
