package movie

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/bodgit/oledmovie/page"
	"github.com/ericpauley/go-quantize/quantize"
)

const maxColors = 2

// frameDelay converts a frame rate to a GIF delay in 100ths of a second.
func frameDelay(fps float64) int {
	if fps <= 0 {
		return 0
	}
	d := int(math.Round(100 / fps))
	if d < 1 {
		d = 1
	}
	return d
}

// EncodeGIF renders every remaining frame of r as an animated GIF.
func EncodeGIF(w io.Writer, r *Reader) error {
	h := r.Header()
	width, height := int(h.Width), int(h.Height)
	delay := frameDelay(h.FPS())

	q := quantize.MedianCutQuantizer{}
	anim := &gif.GIF{
		Config: image.Config{
			Width:  width,
			Height: height,
		},
	}

	for {
		p, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		b, err := page.Unpack(p, width, height)
		if err != nil {
			return err
		}

		palette := q.Quantize(make(color.Palette, 0, maxColors), b)
		if len(palette) == 0 {
			palette = color.Palette{color.Gray{}}
		}

		pm := image.NewPaletted(b.Bounds(), palette)
		draw.Draw(pm, pm.Bounds(), b, image.Point{}, draw.Src)

		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, delay)
	}

	return gif.EncodeAll(w, anim)
}
