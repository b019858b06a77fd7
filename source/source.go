/*
Package source adapts video decoders to a simple pull-based frame stream.

Three kinds of input are understood: a directory of still images, MPEG-1
program streams decoded in pure Go, and anything ffmpeg can read.
*/
package source

import (
	"image"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFPS is assumed when a decoder does not report a usable frame rate.
const DefaultFPS = 30.0

// Source yields decoded frames in presentation order.
type Source interface {
	// FPS returns the frame rate reported by the decoder, which may be zero
	// or negative if unknown.
	FPS() float64

	// Next returns the next frame or io.EOF. The image is owned by the
	// caller and is never modified by subsequent calls.
	Next() (image.Image, error)

	Close() error
}

// Open picks a decoder for path. fps is only used by sources that carry no
// timing information of their own.
func Open(path string, fps float64) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return NewImages(path, fps)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mpg", ".mpeg", ".m1v":
		return OpenMPEG(path)
	default:
		return OpenVideo(path)
	}
}
