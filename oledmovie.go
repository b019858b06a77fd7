/*
Package oledmovie converts video into movies for SSD1306 OLED panels.

Every kept frame is letterboxed onto a grayscale canvas, dithered to 1 bit
with Floyd-Steinberg error diffusion and packed into the controller's page
layout. The packed frames are written back to back, optionally behind a small
header that lets a player on the device keep time.
*/
package oledmovie

import (
	"github.com/bodgit/oledmovie/catalog"
	"github.com/rs/zerolog"
)

// Converter turns frame sources into movies.
type Converter struct {
	opts   Options
	db     *catalog.DB
	logger zerolog.Logger
}

// New returns a Converter. db may be nil, otherwise every successful
// ConvertFile is recorded in it.
func New(opts Options, db *catalog.DB, logger zerolog.Logger) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}

	return &Converter{
		opts:   opts,
		db:     db,
		logger: logger,
	}, nil
}

// Options returns the options in use.
func (c *Converter) Options() Options {
	return c.opts
}
