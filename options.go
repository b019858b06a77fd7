package oledmovie

import (
	"errors"
	"runtime"
)

// Options controls a conversion.
type Options struct {
	Width  int
	Height int // must be a multiple of 8

	// FPS is the target frame rate, zero meaning the source rate
	FPS float64
	// InputFPS is the rate of inputs that carry no timing, such as a
	// directory of images
	InputFPS float64

	Invert     bool
	Serpentine bool
	Background uint8

	// PreviewDir receives one PNG per kept frame when not empty
	PreviewDir string

	// Raw suppresses the header
	Raw bool

	Workers int
}

// DefaultOptions returns the options for a 128x64 panel.
func DefaultOptions() Options {
	return Options{
		Width:      128,
		Height:     64,
		Serpentine: true,
		Workers:    runtime.NumCPU(),
	}
}

const maxDimension = 1<<16 - 1

// Validate checks the options, returning a *ConfigError.
func (o Options) Validate() error {
	var err error
	switch {
	case o.Width <= 0 || o.Width > maxDimension:
		err = errors.New("width must be between 1 and 65535")
	case o.Height <= 0 || o.Height > maxDimension:
		err = errors.New("height must be between 1 and 65535")
	case o.Height%8 != 0:
		err = errors.New("height must be a multiple of 8 for SSD1306")
	case o.FPS < 0:
		err = errors.New("fps cannot be negative")
	case o.InputFPS < 0:
		err = errors.New("input fps cannot be negative")
	case o.Workers < 0:
		err = errors.New("workers cannot be negative")
	}
	if err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}
