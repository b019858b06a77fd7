/*
Package movie implements the single-file SSD1306 movie container.

A movie is an optional 32 byte header followed by frame_count packed frames
back to back. All integers are little-endian:

	0   8 bytes  magic "SSD1306V"
	8   u16      width
	10  u16      height (multiple of 8)
	12  u32      fps * 1000, rounded
	16  u32      frame_count
	20  u8       flags, bit 0 set when the frames were inverted
	21  11 bytes reserved, zero

Because frame_count is only known once the last frame has been written the
header is reserved up front and patched when the Writer is closed. Raw movies
omit the header entirely.
*/
package movie

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/bodgit/oledmovie/page"
)

const (
	// HeaderSize is the size in bytes of the encoded Header
	HeaderSize = 32

	// Magic identifies the container version
	Magic = "SSD1306V"

	reservedSize = 11
)

// FlagInverted is set in Header.Flags when frames were inverted after
// dithering.
const FlagInverted uint8 = 1 << 0

var (
	// ErrBadMagic is returned when the header does not start with Magic
	ErrBadMagic = errors.New("movie: bad magic")
	// ErrFrameSize is returned for a frame that does not match the geometry
	ErrFrameSize = errors.New("movie: frame has the wrong size")
	errShort     = errors.New("movie: header is too short")
)

// Header is the fixed size record at the start of a movie. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Header struct {
	Width      uint16
	Height     uint16
	FPSMilli   uint32
	FrameCount uint32
	Flags      uint8
}

type wireHeader struct {
	Magic      [len(Magic)]byte
	Width      uint16
	Height     uint16
	FPSMilli   uint32
	FrameCount uint32
	Flags      uint8
	Reserved   [reservedSize]byte
}

// NewHeader returns a header for w by h frames played at fps.
func NewHeader(w, h int, fps float64, inverted bool) Header {
	hdr := Header{
		Width:    uint16(w),
		Height:   uint16(h),
		FPSMilli: FPSMilli(fps),
	}
	if inverted {
		hdr.Flags |= FlagInverted
	}
	return hdr
}

// FPSMilli converts a frame rate to thousandths, rounding half to even.
func FPSMilli(fps float64) uint32 {
	return uint32(math.RoundToEven(fps * 1000))
}

// FPS returns the frame rate.
func (h Header) FPS() float64 {
	return float64(h.FPSMilli) / 1000
}

// Inverted reports whether FlagInverted is set.
func (h Header) Inverted() bool {
	return h.Flags&FlagInverted != 0
}

// FrameSize returns the size in bytes of each frame.
func (h Header) FrameSize() int {
	return page.FrameSize(int(h.Width), int(h.Height))
}

// MarshalBinary encodes the header
func (h Header) MarshalBinary() ([]byte, error) {
	w := wireHeader{
		Width:      h.Width,
		Height:     h.Height,
		FPSMilli:   h.FPSMilli,
		FrameCount: h.FrameCount,
		Flags:      h.Flags,
	}
	copy(w.Magic[:], Magic)

	b := new(bytes.Buffer)
	if err := binary.Write(b, binary.LittleEndian, &w); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the header, ignoring anything past HeaderSize
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return errShort
	}

	var w wireHeader
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &w); err != nil {
		return err
	}

	if string(w.Magic[:]) != Magic {
		return ErrBadMagic
	}

	*h = Header{
		Width:      w.Width,
		Height:     w.Height,
		FPSMilli:   w.FPSMilli,
		FrameCount: w.FrameCount,
		Flags:      w.Flags,
	}

	return nil
}
