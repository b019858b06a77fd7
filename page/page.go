/*
Package page implements the SSD1306 page-addressed frame layout.

The display RAM is split into pages of eight rows. Each byte covers one column
of one page with bit 0 holding the topmost row of the page and bit 7 the
bottom row. A frame is written as every column of page 0, then every column of
page 1 and so on, so a W by H frame is always exactly W * H/8 bytes with no
padding.
*/
package page

import (
	"errors"
	"fmt"
)

const rowsPerPage = 8

var errShortFrame = errors.New("page: frame has the wrong length")

// ValidationError is returned when a bitmap cannot be expressed as whole
// pages.
type ValidationError struct {
	Width, Height int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("page: height %d of %dx%d bitmap is not a multiple of %d", e.Height, e.Width, e.Height, rowsPerPage)
}

func validate(w, h int) error {
	if w <= 0 || h <= 0 || h%rowsPerPage != 0 {
		return &ValidationError{Width: w, Height: h}
	}
	return nil
}

// FrameSize returns the number of bytes in a packed w by h frame.
func FrameSize(w, h int) int {
	return w * (h / rowsPerPage)
}
