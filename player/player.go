/*
Package player plays movies on a display at their recorded frame rate.

Any io.Writer that accepts a whole page-addressed frame per Write can act as
the display; OpenSSD1306 provides one backed by a real panel.
*/
package player

import (
	"context"
	"io"
	"time"

	"github.com/bodgit/oledmovie/movie"
	"github.com/rs/zerolog"
)

const defaultFPS = 30.0

// Player pushes frames to a display.
type Player struct {
	logger zerolog.Logger
	fps    float64
}

// New returns a Player. If fps is greater than zero it overrides the rate in
// the movie header.
func New(fps float64, logger zerolog.Logger) *Player {
	return &Player{
		logger: logger,
		fps:    fps,
	}
}

func (p *Player) interval(h movie.Header) time.Duration {
	fps := p.fps
	if fps <= 0 {
		fps = h.FPS()
	}
	if fps <= 0 {
		fps = defaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Play writes every remaining frame of r to d, one per tick, and returns the
// number of frames shown.
func (p *Player) Play(ctx context.Context, r *movie.Reader, d io.Writer) (int, error) {
	period := p.interval(r.Header())
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	p.logger.Info().Dur("period", period).Uint32("frames", r.Header().FrameCount).Msg("Starting playback")

	var n int
	for {
		frame, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		if _, err := d.Write(frame); err != nil {
			return n, err
		}
		n++

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}

	p.logger.Info().Int("frames", n).Msg("Playback finished")

	return n, nil
}
