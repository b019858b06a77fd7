package player

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bodgit/oledmovie/movie"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type display struct {
	frames [][]byte
}

func (d *display) Write(p []byte) (int, error) {
	d.frames = append(d.frames, append([]byte(nil), p...))
	return len(p), nil
}

func movieOf(t *testing.T, fps float64, n int) *bytes.Buffer {
	var buf bytes.Buffer
	mw, err := movie.NewWriter(&buf, movie.NewHeader(8, 8, fps, false), false)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, mw.WriteFrame(bytes.Repeat([]byte{byte(i)}, 8)))
	}
	require.NoError(t, mw.Close())
	return &buf
}

func TestPlay(t *testing.T) {
	r, err := movie.NewReader(movieOf(t, 1000, 4))
	require.NoError(t, err)

	var d display
	n, err := New(0, zerolog.Nop()).Play(context.Background(), r, &d)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, d.frames, 4)
	for i, f := range d.frames {
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, 8), f)
	}
}

func TestPlayCancel(t *testing.T) {
	r, err := movie.NewReader(movieOf(t, 0.001, 3))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var d display
	n, err := New(0, zerolog.Nop()).Play(ctx, r, &d)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, n)
}

func TestInterval(t *testing.T) {
	h := movie.NewHeader(8, 8, 25, false)

	assert.Equal(t, 40*time.Millisecond, New(0, zerolog.Nop()).interval(h))
	assert.Equal(t, 100*time.Millisecond, New(10, zerolog.Nop()).interval(h))
	assert.Equal(t, time.Second/30, New(0, zerolog.Nop()).interval(movie.Header{}))
}
