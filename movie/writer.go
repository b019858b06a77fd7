package movie

import (
	"bytes"
	"errors"
	"io"
)

// Writer appends packed frames to a movie.
//
// In header mode the header is reserved before the first frame and written
// by Close. If the underlying writer can seek, the reserved region is zero
// filled and patched in place. Otherwise every frame is held in memory until
// Close so the header can be emitted first. An unclosed header-mode movie is
// corrupt.
type Writer struct {
	w      io.Writer
	header Header
	raw    bool

	ws    io.WriteSeeker
	start int64
	buf   *bytes.Buffer

	size   int
	count  uint32
	closed bool
}

var errClosed = errors.New("movie: writer is closed")

// NewWriter returns a Writer for frames described by h. h.FrameCount is
// ignored and replaced with the number of frames written. If raw is true no
// header is written at all.
func NewWriter(w io.Writer, h Header, raw bool) (*Writer, error) {
	mw := &Writer{
		w:      w,
		header: h,
		raw:    raw,
		size:   h.FrameSize(),
	}

	if raw {
		return mw, nil
	}

	if ws, ok := w.(io.WriteSeeker); ok {
		// Pipes and terminals satisfy the interface but fail to seek
		if start, err := ws.Seek(0, io.SeekCurrent); err == nil {
			mw.ws, mw.start = ws, start
			if _, err := ws.Write(make([]byte, HeaderSize)); err != nil {
				return nil, err
			}
			return mw, nil
		}
	}

	mw.buf = new(bytes.Buffer)

	return mw, nil
}

// Seekable reports whether the header will be patched in place.
func (w *Writer) Seekable() bool {
	return w.ws != nil
}

// Count returns the number of frames written so far.
func (w *Writer) Count() int {
	return int(w.count)
}

// WriteFrame appends one packed frame.
func (w *Writer) WriteFrame(p []byte) error {
	if w.closed {
		return errClosed
	}
	if len(p) != w.size {
		return ErrFrameSize
	}

	var err error
	switch {
	case w.buf != nil:
		_, err = w.buf.Write(p)
	default:
		_, err = w.w.Write(p)
	}
	if err != nil {
		return err
	}

	w.count++

	return nil
}

// Header returns the header as it will be, or was, written.
func (w *Writer) Header() Header {
	h := w.header
	h.FrameCount = w.count
	return h
}

// Close finalises the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.raw {
		return nil
	}

	b, err := w.Header().MarshalBinary()
	if err != nil {
		return err
	}

	if w.buf != nil {
		if _, err := w.w.Write(b); err != nil {
			return err
		}
		_, err := w.buf.WriteTo(w.w)
		return err
	}

	end, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.ws.Seek(w.start, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.ws.Write(b); err != nil {
		return err
	}
	_, err = w.ws.Seek(end, io.SeekStart)

	return err
}
