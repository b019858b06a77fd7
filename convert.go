package oledmovie

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bodgit/oledmovie/catalog"
	"github.com/bodgit/oledmovie/dither"
	"github.com/bodgit/oledmovie/letterbox"
	"github.com/bodgit/oledmovie/mono"
	"github.com/bodgit/oledmovie/movie"
	"github.com/bodgit/oledmovie/page"
	"github.com/bodgit/oledmovie/source"
)

// setSourcePath fills in the input path of a SourceError anywhere in the
// chain of err.
func setSourcePath(err error, path string) {
	var se *SourceError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
}

// Stdout is the output name that selects standard output.
const Stdout = "-"

// Result summarises a finished conversion.
type Result struct {
	Header   movie.Header
	Decoded  int
	Frames   int
	Interval int
	Raw      bool
}

// FrameSize returns the size in bytes of each packed frame.
func (r *Result) FrameSize() int {
	return r.Header.FrameSize()
}

// Size returns the total size of the movie in bytes.
func (r *Result) Size() int {
	n := r.Frames * r.FrameSize()
	if !r.Raw {
		n += movie.HeaderSize
	}
	return n
}

// render takes one kept frame through scaling, dithering and packing.
func (c *Converter) render(seq int, m image.Image) ([]byte, error) {
	gray, err := letterbox.Scale(m, c.opts.Width, c.opts.Height, c.opts.Background)
	if err != nil {
		return nil, &SourceError{Err: err}
	}

	bits := dither.FloydSteinberg(gray, c.opts.Serpentine)

	if c.opts.PreviewDir != "" {
		if err := c.writePreview(seq, bits); err != nil {
			return nil, err
		}
	}

	if c.opts.Invert {
		bits.Invert()
	}

	c.logger.Debug().Int("frame", seq).Int("on", bits.Count()).Msg("Rendered frame")

	return page.Pack(bits)
}

// PreviewName returns the file name of the preview for kept frame seq.
func PreviewName(seq int) string {
	return fmt.Sprintf("preview_%05d.png", seq)
}

func (c *Converter) writePreview(seq int, b *mono.Bitmap) error {
	f, err := os.Create(filepath.Join(c.opts.PreviewDir, PreviewName(seq)))
	if err != nil {
		return &IOError{Op: "create preview", Err: err}
	}
	defer f.Close()

	if err := png.Encode(f, b); err != nil {
		return &IOError{Op: "encode preview", Err: err}
	}

	return f.Close()
}

// Convert reads every frame from src and writes the movie to w. If w is an
// io.WriteSeeker that can seek the header is patched in place, otherwise the
// whole movie is buffered until the source is exhausted.
func (c *Converter) Convert(ctx context.Context, src source.Source, w io.Writer) (*Result, error) {
	fps := src.FPS()
	if fps <= 0 && c.opts.InputFPS > 0 {
		fps = c.opts.InputFPS
	}
	sampler := NewSampler(fps, c.opts.FPS)

	c.logger.Info().
		Float64("source_fps", sampler.SourceFPS()).
		Float64("fps", sampler.FPS()).
		Int("interval", sampler.Interval()).
		Msg("Sampling frames")

	if c.opts.PreviewDir != "" {
		if err := os.MkdirAll(c.opts.PreviewDir, 0o755); err != nil {
			return nil, &IOError{Op: "create preview directory", Err: err}
		}
	}

	h := movie.NewHeader(c.opts.Width, c.opts.Height, sampler.FPS(), c.opts.Invert)
	mw, err := movie.NewWriter(w, h, c.opts.Raw)
	if err != nil {
		return nil, &IOError{Op: "reserve header", Err: err}
	}

	pctx := ctx
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error
	var stats decodeStats

	jobs, errc, err := c.decodeFrames(ctx, src, sampler, &stats)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	var results []<-chan result
	for i := 0; i < c.opts.Workers; i++ {
		out, errc, err := c.renderWorker(ctx, jobs)
		if err != nil {
			return nil, err
		}
		results = append(results, out)
		errcList = append(errcList, errc)
	}

	errc, err = c.writeFrames(ctx, mergeResults(ctx, results...), mw)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	if err := waitForPipeline(cancelFunc, errcList...); err != nil {
		return nil, err
	}

	// Stages stop quietly when cancelled so the movie may be short
	if err := pctx.Err(); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, &IOError{Op: "write header", Err: err}
	}

	r := &Result{
		Header:   mw.Header(),
		Decoded:  stats.decoded,
		Frames:   mw.Count(),
		Interval: sampler.Interval(),
		Raw:      c.opts.Raw,
	}

	c.logger.Info().
		Int("decoded", r.Decoded).
		Int("frames", r.Frames).
		Int("frame_size", r.FrameSize()).
		Msg("Conversion finished")

	return r, nil
}

// ConvertFile converts the video, or directory of images, at in and writes
// the movie to out, which may be Stdout. A header-mode movie that could not
// be finished is removed; a partial raw movie is left behind.
func (c *Converter) ConvertFile(ctx context.Context, in, out string) (*Result, error) {
	src, err := source.Open(in, c.opts.InputFPS)
	if err != nil {
		return nil, &SourceError{Path: in, Err: err}
	}
	defer src.Close()

	var w io.Writer = os.Stdout
	var f *os.File
	if out != Stdout {
		if f, err = os.Create(out); err != nil {
			return nil, &IOError{Op: "create output", Err: err}
		}
		w = f
	}

	r, err := c.Convert(ctx, src, w)
	if err != nil {
		setSourcePath(err, in)
		if f != nil {
			f.Close()
			if !c.opts.Raw {
				os.Remove(out)
			}
		}
		return nil, err
	}

	if f != nil {
		if err := f.Close(); err != nil {
			return nil, &IOError{Op: "close output", Err: err}
		}
	}

	if c.db != nil && out != Stdout {
		if err := c.record(in, out, r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (c *Converter) record(in, out string, r *Result) error {
	var sha string
	if info, err := os.Stat(in); err == nil && info.Mode().IsRegular() {
		if sha, err = catalog.HashFile(in); err != nil {
			return err
		}
	}

	input, err := filepath.Abs(in)
	if err != nil {
		return err
	}
	output, err := filepath.Abs(out)
	if err != nil {
		return err
	}

	id, err := c.db.Add(catalog.Entry{
		Source:   input,
		SHA1:     sha,
		Output:   output,
		Width:    int(r.Header.Width),
		Height:   int(r.Header.Height),
		FPSMilli: r.Header.FPSMilli,
		Frames:   r.Frames,
		Inverted: r.Header.Inverted(),
		Raw:      r.Raw,
		Created:  time.Now(),
	})
	if err != nil {
		return err
	}

	c.logger.Debug().Int64("id", id).Str("output", output).Msg("Recorded conversion")

	return nil
}
