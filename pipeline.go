package oledmovie

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/bodgit/oledmovie/movie"
	"github.com/bodgit/oledmovie/source"
)

var (
	errNoFrames   = errors.New("no frames decoded")
	errEmptyFrame = errors.New("frame has no pixels")
)

type job struct {
	seq   int
	frame image.Image
}

type result struct {
	seq    int
	packed []byte
}

type decodeStats struct {
	decoded int
}

func (c *Converter) decodeFrames(ctx context.Context, src source.Source, sampler *Sampler, stats *decodeStats) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		var kept int
		for ctx.Err() == nil {
			m, err := src.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				errc <- &SourceError{Err: err}
				return
			}

			index := stats.decoded
			stats.decoded++

			if !sampler.Keep() {
				continue
			}

			// Reject these here, the scaler has nothing to work with
			if m.Bounds().Empty() {
				errc <- &SourceError{Err: errEmptyFrame}
				return
			}

			c.logger.Debug().Int("index", index).Int("frame", kept).Msg("Keeping frame")

			select {
			case out <- job{seq: kept, frame: m}:
			case <-ctx.Done():
				return
			}
			kept++
		}

		if ctx.Err() == nil && stats.decoded == 0 {
			errc <- &SourceError{Err: errNoFrames}
		}
	}()
	return out, errc, nil
}

func (c *Converter) renderWorker(ctx context.Context, in <-chan job) (<-chan result, <-chan error, error) {
	out := make(chan result)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for j := range in {
			packed, err := c.render(j.seq, j.frame)
			if err != nil {
				errc <- err
				return
			}

			select {
			case out <- result{seq: j.seq, packed: packed}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

// writeFrames restores decode order before handing frames to mw.
func (c *Converter) writeFrames(ctx context.Context, in <-chan result, mw *movie.Writer) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)

		pending := make(map[int][]byte)
		var next int
		for r := range in {
			pending[r.seq] = r.packed
			for {
				packed, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := mw.WriteFrame(packed); err != nil {
					errc <- &IOError{Op: "write frame", Err: err}
					return
				}
				next++
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error from any stage, cancelling the
// rest, and only returns once every stage has finished.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func mergeResults(ctx context.Context, cs ...<-chan result) <-chan result {
	var wg sync.WaitGroup
	out := make(chan result)
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan result) {
			defer wg.Done()
			for n := range c {
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
