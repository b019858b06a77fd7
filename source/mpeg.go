package source

import (
	"errors"
	"image"
	"io"
	"os"

	"github.com/gen2brain/mpeg"
)

// maxEmptyDecodes bounds the consecutive pictures the decoder may fail to
// produce before the stream is given up on.
const maxEmptyDecodes = 64

var (
	errNoVideo  = errors.New("source: no video stream")
	errNoHeader = errors.New("source: no video sequence header")
	errStalled  = errors.New("source: video decoder stalled")
)

// MPEG decodes an MPEG-1 program stream without any external tools.
type MPEG struct {
	f   *os.File
	mpg *mpeg.MPEG
}

// OpenMPEG opens an MPEG-1 file.
func OpenMPEG(path string) (*MPEG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	mpg, err := mpeg.New(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	switch {
	case mpg.NumVideoStreams() == 0:
		f.Close()
		return nil, errNoVideo
	case mpg.Video() == nil || !mpg.Video().HasHeader():
		f.Close()
		return nil, errNoHeader
	}

	return &MPEG{
		f:   f,
		mpg: mpg,
	}, nil
}

// FPS returns the frame rate from the sequence header.
func (s *MPEG) FPS() float64 {
	return s.mpg.Framerate()
}

// Next decodes the next picture.
func (s *MPEG) Next() (image.Image, error) {
	for empty := 0; !s.mpg.HasEnded(); {
		frame := s.mpg.DecodeVideo()
		if frame == nil {
			if empty++; empty == maxEmptyDecodes {
				return nil, errStalled
			}
			continue
		}
		// The decoder reuses its planes for the next picture
		return cloneYCbCr(frame.YCbCr()), nil
	}
	return nil, io.EOF
}

// Close closes the underlying file.
func (s *MPEG) Close() error {
	return s.f.Close()
}

func cloneYCbCr(m *image.YCbCr) *image.YCbCr {
	dup := *m
	dup.Y = append([]byte(nil), m.Y...)
	dup.Cb = append([]byte(nil), m.Cb...)
	dup.Cr = append([]byte(nil), m.Cr...)
	return &dup
}
