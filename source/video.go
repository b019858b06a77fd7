package source

import (
	"image"
	"io"

	vidio "github.com/AlexEidt/Vidio"
)

// Video decodes any container and codec supported by the ffmpeg binary on
// the PATH.
type Video struct {
	video *vidio.Video
	frame *image.RGBA
}

// OpenVideo starts ffmpeg on path.
func OpenVideo(path string) (*Video, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, err
	}

	frame := image.NewRGBA(image.Rect(0, 0, video.Width(), video.Height()))
	if err := video.SetFrameBuffer(frame.Pix); err != nil {
		video.Close()
		return nil, err
	}

	return &Video{
		video: video,
		frame: frame,
	}, nil
}

// FPS returns the frame rate reported by ffprobe.
func (s *Video) FPS() float64 {
	return s.video.FPS()
}

// Next reads the next frame.
func (s *Video) Next() (image.Image, error) {
	if !s.video.Read() {
		return nil, io.EOF
	}

	dup := image.NewRGBA(s.frame.Rect)
	copy(dup.Pix, s.frame.Pix)

	return dup, nil
}

// Close stops ffmpeg.
func (s *Video) Close() error {
	s.video.Close()
	return nil
}
