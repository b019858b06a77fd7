package page

import (
	"image"

	"github.com/bodgit/oledmovie/mono"
)

// Pack converts b into the page-addressed layout.
func Pack(b *mono.Bitmap) ([]byte, error) {
	r := b.Bounds()
	w, h := r.Dx(), r.Dy()
	if err := validate(w, h); err != nil {
		return nil, err
	}

	out := make([]byte, 0, FrameSize(w, h))
	for p := 0; p < h/rowsPerPage; p++ {
		y0 := r.Min.Y + p*rowsPerPage
		for x := r.Min.X; x < r.Max.X; x++ {
			var v byte
			for bit := 0; bit < rowsPerPage; bit++ {
				if b.BitAt(x, y0+bit) {
					v |= 1 << bit
				}
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// Unpack is the inverse of Pack, returning a w by h bitmap anchored at (0, 0).
func Unpack(p []byte, w, h int) (*mono.Bitmap, error) {
	if err := validate(w, h); err != nil {
		return nil, err
	}
	if len(p) != FrameSize(w, h) {
		return nil, errShortFrame
	}

	b := mono.New(image.Rect(0, 0, w, h))
	for i, v := range p {
		x := i % w
		y0 := i / w * rowsPerPage
		for bit := 0; bit < rowsPerPage; bit++ {
			b.SetBit(x, y0+bit, v&(1<<bit) != 0)
		}
	}

	return b, nil
}
