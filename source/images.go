package source

import (
	"errors"
	"image"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
)

var errNoImages = errors.New("source: no images found")

// Images reads a directory of numbered stills, in lexical order.
type Images struct {
	files []string
	fps   float64
	next  int
}

// NewImages lists the png, gif and jpeg files in dir.
func NewImages(dir string, fps float64) (*Images, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	names, err := d.Readdirnames(0)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range names {
		// Ignore any hidden files
		if name[0] == '.' {
			continue
		}
		switch filepath.Ext(name) {
		case ".png", ".gif", ".jpg", ".jpeg", ".PNG", ".GIF", ".JPG", ".JPEG":
			files = append(files, filepath.Join(dir, name))
		}
	}

	if len(files) == 0 {
		return nil, errNoImages
	}
	sort.Strings(files)

	return &Images{
		files: files,
		fps:   fps,
	}, nil
}

// FPS returns the rate given to NewImages.
func (s *Images) FPS() float64 {
	return s.fps
}

// Next decodes the next file.
func (s *Images) Next() (image.Image, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}

	f, err := os.Open(s.files[s.next])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	s.next++

	return m, nil
}

// Close is a no-op.
func (s *Images) Close() error {
	return nil
}
