package oledmovie

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/oledmovie/catalog"
	"github.com/bodgit/oledmovie/movie"
	"github.com/bodgit/oledmovie/page"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	frames []image.Image
	fps    float64
	fail   error // returned once frames run out, instead of io.EOF
	next   int
}

func (s *fakeSource) FPS() float64 { return s.fps }

func (s *fakeSource) Next() (image.Image, error) {
	if s.next >= len(s.frames) {
		if s.fail != nil {
			return nil, s.fail
		}
		return nil, io.EOF
	}
	m := s.frames[s.next]
	s.next++
	return m, nil
}

func (s *fakeSource) Close() error { return nil }

// sequential is a writer that cannot seek.
type sequential struct {
	bytes.Buffer
}

func solid(w, h int, c color.Color) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(m, m.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return m
}

func gradient(w, h, phase int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*3 + phase*11) % 256)
			m.Set(x, y, color.RGBA{R: v, G: 255 - v, B: v / 2, A: 0xff})
		}
	}
	return m
}

func newConverter(t *testing.T, modify func(*Options)) *Converter {
	o := DefaultOptions()
	if modify != nil {
		modify(&o)
	}
	c, err := New(o, nil, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestConvertEndToEnd(t *testing.T) {
	tests := []struct {
		name   string
		raw    bool
		length int
	}{
		{"header", false, 40},
		{"raw", true, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConverter(t, func(o *Options) {
				o.Width, o.Height, o.FPS, o.Raw = 8, 8, 15, tt.raw
			})

			src := &fakeSource{
				fps: 30,
				frames: []image.Image{
					gradient(64, 32, 0),
					gradient(64, 32, 1),
				},
			}

			var out sequential
			r, err := c.Convert(context.Background(), src, &out)
			require.NoError(t, err)

			assert.Equal(t, 2, r.Decoded)
			assert.Equal(t, 1, r.Frames)
			assert.Equal(t, 2, r.Interval)
			assert.Equal(t, 8, r.FrameSize())
			assert.Equal(t, tt.length, r.Size())
			assert.Equal(t, tt.length, out.Len())

			if tt.raw {
				return
			}

			mr, err := movie.NewReader(&out)
			require.NoError(t, err)
			h := mr.Header()
			assert.Equal(t, uint16(8), h.Width)
			assert.Equal(t, uint16(8), h.Height)
			assert.Equal(t, uint32(15000), h.FPSMilli)
			assert.Equal(t, uint32(1), h.FrameCount)
			assert.Equal(t, uint8(0), h.Flags)
		})
	}
}

func TestConvertAboveSourceRate(t *testing.T) {
	c := newConverter(t, func(o *Options) { o.Width, o.Height, o.FPS = 8, 8, 60 })

	src := &fakeSource{fps: 24, frames: []image.Image{gradient(16, 16, 0), gradient(16, 16, 1)}}

	var out sequential
	r, err := c.Convert(context.Background(), src, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Decoded)
	assert.Equal(t, 2, r.Frames)
	assert.Equal(t, 1, r.Interval)
	assert.Equal(t, movie.HeaderSize+2*8, out.Len())

	mr, err := movie.NewReader(&out)
	require.NoError(t, err)
	assert.Equal(t, uint32(60000), mr.Header().FPSMilli)
	assert.Equal(t, uint32(2), mr.Header().FrameCount)
}

func TestConvertSeekable(t *testing.T) {
	c := newConverter(t, func(o *Options) { o.Width, o.Height = 16, 8 })

	f, err := os.Create(filepath.Join(t.TempDir(), "movie.bin"))
	require.NoError(t, err)
	defer f.Close()

	src := &fakeSource{fps: 24, frames: []image.Image{gradient(32, 16, 0), gradient(32, 16, 1), gradient(32, 16, 2)}}
	_, err = c.Convert(context.Background(), src, f)
	require.NoError(t, err)

	var buffered sequential
	src = &fakeSource{fps: 24, frames: src.frames}
	_, err = c.Convert(context.Background(), src, &buffered)
	require.NoError(t, err)

	b, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, buffered.Bytes(), b)
	assert.Len(t, b, movie.HeaderSize+3*16)
}

func TestConvertOrderWithWorkers(t *testing.T) {
	var frames []image.Image
	for i := 0; i < 24; i++ {
		frames = append(frames, gradient(160, 90, i))
	}

	convert := func(workers int) []byte {
		c := newConverter(t, func(o *Options) { o.Workers = workers })
		var out sequential
		r, err := c.Convert(context.Background(), &fakeSource{fps: 30, frames: frames}, &out)
		require.NoError(t, err)
		assert.Equal(t, 24, r.Frames)
		return out.Bytes()
	}

	assert.Equal(t, convert(1), convert(8))
}

func TestConvertInvertAndPreview(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preview")
	c := newConverter(t, func(o *Options) {
		o.Width, o.Height, o.Invert, o.PreviewDir = 16, 16, true, dir
	})

	src := &fakeSource{fps: 30, frames: []image.Image{
		solid(16, 16, color.White),
		solid(16, 16, color.Black),
	}}

	var out sequential
	r, err := c.Convert(context.Background(), src, &out)
	require.NoError(t, err)
	assert.True(t, r.Header.Inverted())

	b := out.Bytes()
	frameSize := page.FrameSize(16, 16)
	// White dithers to all on, then inverted to all off
	assert.Equal(t, make([]byte, frameSize), b[movie.HeaderSize:movie.HeaderSize+frameSize])
	assert.Equal(t, bytes.Repeat([]byte{0xff}, frameSize), b[movie.HeaderSize+frameSize:])
	assert.Equal(t, movie.FlagInverted, b[20])

	// Previews show the bitmap before inversion
	for i, want := range []uint8{0xff, 0x00} {
		f, err := os.Open(filepath.Join(dir, PreviewName(i)))
		require.NoError(t, err)
		m, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)

		g, ok := m.(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, image.Rect(0, 0, 16, 16), g.Bounds())
		assert.Equal(t, want, g.GrayAt(5, 5).Y)
	}
}

func TestPreviewName(t *testing.T) {
	assert.Equal(t, "preview_00000.png", PreviewName(0))
	assert.Equal(t, "preview_01234.png", PreviewName(1234))
}

func TestNewConfigError(t *testing.T) {
	o := DefaultOptions()
	o.Height = 60

	_, err := New(o, nil, zerolog.Nop())
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestConvertNoFrames(t *testing.T) {
	c := newConverter(t, nil)

	_, err := c.Convert(context.Background(), &fakeSource{fps: 30}, new(sequential))
	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, errNoFrames)
}

func TestConvertEmptyFrame(t *testing.T) {
	c := newConverter(t, nil)

	src := &fakeSource{fps: 30, frames: []image.Image{image.NewRGBA(image.Rect(0, 0, 0, 0))}}
	_, err := c.Convert(context.Background(), src, new(sequential))
	var serr *SourceError
	assert.ErrorAs(t, err, &serr)
}

func TestConvertDecodeError(t *testing.T) {
	c := newConverter(t, nil)
	boom := errors.New("boom")

	src := &fakeSource{fps: 30, frames: []image.Image{solid(8, 8, color.White)}, fail: boom}
	var out sequential
	_, err := c.Convert(context.Background(), src, &out)
	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, boom)
	// The header is never emitted for a buffered movie that failed
	assert.Equal(t, 0, out.Len())
}

func TestConvertCancelled(t *testing.T) {
	c := newConverter(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{fps: 30, frames: []image.Image{solid(8, 8, color.White)}}
	_, err := c.Convert(ctx, src, new(sequential))
	assert.ErrorIs(t, err, context.Canceled)
}

func writeFrames(t *testing.T, dir string, n int) {
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := 0; i < n; i++ {
		f, err := os.Create(filepath.Join(dir, PreviewName(i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, gradient(40, 30, i)))
		require.NoError(t, f.Close())
	}
}

func TestConvertFile(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "frames")
	out := filepath.Join(tmp, "movie.bin")
	writeFrames(t, in, 6)

	db, err := catalog.Open(filepath.Join(tmp, "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	o := DefaultOptions()
	o.InputFPS, o.FPS = 12, 6
	c, err := New(o, db, zerolog.Nop())
	require.NoError(t, err)

	r, err := c.ConvertFile(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Frames)
	assert.Equal(t, uint32(6000), r.Header.FPSMilli)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(movie.HeaderSize+3*1024), info.Size())

	abs, err := filepath.Abs(out)
	require.NoError(t, err)
	e, err := db.Find(abs)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 3, e.Frames)
	assert.Empty(t, e.SHA1)
}

func TestSetSourcePath(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct", &SourceError{Err: errNoFrames}, "in.mp4"},
		{"wrapped", fmt.Errorf("convert: %w", &SourceError{Err: errNoFrames}), "in.mp4"},
		{"already set", &SourceError{Path: "other.mp4", Err: errNoFrames}, "other.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSourcePath(tt.err, "in.mp4")
			var serr *SourceError
			require.ErrorAs(t, tt.err, &serr)
			assert.Equal(t, tt.want, serr.Path)
		})
	}

	assert.NotPanics(t, func() { setSourcePath(errors.New("boom"), "in.mp4") })
}

func TestConvertFileMissingInput(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "movie.bin")

	_, err := newConverter(t, nil).ConvertFile(context.Background(), filepath.Join(tmp, "missing"), out)
	var serr *SourceError
	require.ErrorAs(t, err, &serr)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output should be produced")
}

func TestConvertFileRemovesUnfinishedMovie(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "frames")
	writeFrames(t, in, 2)
	// Not an image, decoding fails on the third frame
	require.NoError(t, os.WriteFile(filepath.Join(in, PreviewName(2)), []byte("junk"), 0o644))

	tests := []struct {
		name string
		raw  bool
	}{
		{"header", false},
		{"raw", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(tmp, tt.name+".bin")
			c := newConverter(t, func(o *Options) { o.Raw = tt.raw; o.Workers = 1 })

			_, err := c.ConvertFile(context.Background(), in, out)
			var serr *SourceError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, in, serr.Path)

			_, err = os.Stat(out)
			if tt.raw {
				assert.NoError(t, err)
			} else {
				assert.True(t, os.IsNotExist(err))
			}
		})
	}
}
