package movie

import (
	"io"
)

// Reader iterates over the frames of a movie.
type Reader struct {
	r      io.Reader
	header Header
	raw    bool
	frame  []byte
	n      uint32
}

// NewReader reads the header from r and returns a Reader positioned at the
// first frame.
func NewReader(r io.Reader) (*Reader, error) {
	var b [HeaderSize]byte
	if err := readFull(r, b[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errShort
		}
		return nil, err
	}

	var h Header
	if err := h.UnmarshalBinary(b[:]); err != nil {
		return nil, err
	}

	return &Reader{
		r:      r,
		header: h,
		frame:  make([]byte, h.FrameSize()),
	}, nil
}

// NewRawReader returns a Reader for a headerless movie of w by h frames. The
// frame count is unknown and frames are read until r is exhausted.
func NewRawReader(r io.Reader, w, h int, fps float64) *Reader {
	hdr := NewHeader(w, h, fps, false)
	return &Reader{
		r:      r,
		header: hdr,
		raw:    true,
		frame:  make([]byte, hdr.FrameSize()),
	}
}

// Header returns the movie header. For raw movies FrameCount is the number of
// frames read so far.
func (r *Reader) Header() Header {
	h := r.header
	if r.raw {
		h.FrameCount = r.n
	}
	return h
}

// Next returns the next frame. The returned slice is only valid until the
// following call. At the end of the movie it returns io.EOF.
func (r *Reader) Next() ([]byte, error) {
	if !r.raw && r.n >= r.header.FrameCount {
		return nil, io.EOF
	}

	switch err := readFull(r.r, r.frame); err {
	case nil:
	case io.EOF:
		if r.raw {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	default:
		return nil, err
	}

	r.n++

	return r.frame, nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return err
}
