package oledmovie

import (
	"math"

	"github.com/bodgit/oledmovie/source"
)

// Sampler decimates a decoded frame sequence to approach a target rate. It
// only ever drops frames; a target above the source rate keeps every frame.
type Sampler struct {
	srcFPS    float64
	targetFPS float64
	interval  int
	index     int
}

// NewSampler returns a Sampler for frames decoded at srcFPS. A srcFPS that is
// zero or negative is taken to be source.DefaultFPS, a targetFPS that is zero
// or negative means the source rate.
func NewSampler(srcFPS, targetFPS float64) *Sampler {
	if srcFPS <= 0 {
		srcFPS = source.DefaultFPS
	}
	if targetFPS <= 0 {
		targetFPS = srcFPS
	}

	interval := 1
	if targetFPS < srcFPS {
		interval = int(math.RoundToEven(srcFPS / targetFPS))
		if interval < 1 {
			interval = 1
		}
	}

	return &Sampler{
		srcFPS:    srcFPS,
		targetFPS: targetFPS,
		interval:  interval,
	}
}

// Interval returns the distance between kept frames.
func (s *Sampler) Interval() int {
	return s.interval
}

// SourceFPS returns the validated source rate.
func (s *Sampler) SourceFPS() float64 {
	return s.srcFPS
}

// FPS returns the playback rate recorded in the header, the requested rate
// or the source rate if none was requested. A rate above the source rate is
// recorded as is even though no frames are duplicated.
func (s *Sampler) FPS() float64 {
	return s.targetFPS
}

// Keep must be called once for every decoded frame, in order. It reports
// whether that frame is part of the output.
func (s *Sampler) Keep() bool {
	keep := s.index%s.interval == 0
	s.index++
	return keep
}
