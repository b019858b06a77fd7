package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bodgit/oledmovie"
	"github.com/bodgit/oledmovie/catalog"
	"github.com/bodgit/oledmovie/movie"
	"github.com/bodgit/oledmovie/player"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	exitFailure = 1
	exitConfig  = 2
	exitSource  = 3
	exitIO      = 4
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	if !c.Bool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

func openCatalog(c *cli.Context) (*catalog.DB, error) {
	if c.String("db") == "" {
		return nil, nil
	}
	return catalog.Open(c.String("db"))
}

// exitError maps the conversion error taxonomy onto exit statuses.
func exitError(err error) error {
	var (
		cerr *oledmovie.ConfigError
		serr *oledmovie.SourceError
		ierr *oledmovie.IOError
	)
	switch {
	case errors.As(err, &cerr):
		return cli.Exit(err, exitConfig)
	case errors.As(err, &serr):
		return cli.Exit(err, exitSource)
	case errors.As(err, &ierr):
		return cli.Exit(err, exitIO)
	default:
		return cli.Exit(err, exitFailure)
	}
}

func openMovie(c *cli.Context, file string) (*movie.Reader, io.Closer, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}

	if c.Bool("raw") {
		return movie.NewRawReader(f, c.Int("width"), c.Int("height"), c.Float64("fps")), f, nil
	}

	r, err := movie.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return r, f, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	app := cli.NewApp()

	app.Name = "oledmovie"
	app.Usage = "SSD1306 OLED movie converter"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"OLEDMOVIE_DB"},
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	geometryFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"OLEDMOVIE_WIDTH"},
			Value:   128,
			Usage:   "display width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"OLEDMOVIE_HEIGHT"},
			Value:   64,
			Usage:   "display height in pixels, a multiple of 8",
		},
	}

	readFlags := append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "movie has no header",
		},
		&cli.Float64Flag{
			Name:  "fps",
			Usage: "frame rate, overrides the header",
		},
	}, geometryFlags...)

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert a video to an SSD1306 movie",
			Description: "VIDEO may be any file ffmpeg can decode, an MPEG-1 file, or a directory of images. Use - as OUTFILE to write to standard output.",
			ArgsUsage:   "VIDEO OUTFILE",
			Flags: append([]cli.Flag{
				&cli.Float64Flag{
					Name:    "fps",
					EnvVars: []string{"OLEDMOVIE_FPS"},
					Usage:   "target frame rate (default: source frame rate)",
				},
				&cli.Float64Flag{
					Name:  "input-fps",
					Usage: "frame rate of a directory of images (default: 30)",
				},
				&cli.BoolFlag{
					Name:    "invert",
					EnvVars: []string{"OLEDMOVIE_INVERT"},
					Usage:   "invert pixels after dithering",
				},
				&cli.BoolFlag{
					Name:  "no-serpentine",
					Usage: "disable serpentine scan",
				},
				&cli.BoolFlag{
					Name:  "preview",
					Usage: "write preview PNGs (preview_00000.png, ...)",
				},
				&cli.StringFlag{
					Name:  "preview-dir",
					Value: ".",
					Usage: "directory for preview PNGs",
				},
				&cli.BoolFlag{
					Name:  "raw",
					Usage: "write frames only (no header)",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: oledmovie.DefaultOptions().Workers,
					Usage: "number of frames rendered in parallel",
				},
			}, geometryFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts := oledmovie.DefaultOptions()
				opts.Width = c.Int("width")
				opts.Height = c.Int("height")
				opts.FPS = c.Float64("fps")
				opts.InputFPS = c.Float64("input-fps")
				opts.Invert = c.Bool("invert")
				opts.Serpentine = !c.Bool("no-serpentine")
				opts.Raw = c.Bool("raw")
				opts.Workers = c.Int("workers")
				if c.Bool("preview") {
					opts.PreviewDir = c.String("preview-dir")
				}

				// Reject bad geometry before touching the input
				if err := opts.Validate(); err != nil {
					return exitError(err)
				}

				db, err := openCatalog(c)
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				if db != nil {
					defer db.Close()
				}

				m, err := oledmovie.New(opts, db, newLogger(c))
				if err != nil {
					return exitError(err)
				}

				ctx, stop := signalContext()
				defer stop()

				out := c.Args().Get(1)
				r, err := m.ConvertFile(ctx, c.Args().First(), out)
				if err != nil {
					return exitError(err)
				}

				fmt.Fprintf(os.Stderr, "Done. %d frame(s) • frame_size=%d bytes • output=%s\n", r.Frames, r.FrameSize(), out)

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Show the header of a movie",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				defer f.Close()

				r, err := movie.NewReader(f)
				if err != nil {
					return cli.Exit(err, exitFailure)
				}
				h := r.Header()

				fmt.Printf("size:       %dx%d\n", h.Width, h.Height)
				fmt.Printf("fps:        %.3f\n", h.FPS())
				fmt.Printf("frames:     %d\n", h.FrameCount)
				fmt.Printf("frame_size: %d bytes\n", h.FrameSize())
				fmt.Printf("inverted:   %t\n", h.Inverted())

				db, err := openCatalog(c)
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				if db == nil {
					return nil
				}
				defer db.Close()

				abs, err := filepath.Abs(c.Args().First())
				if err != nil {
					return cli.Exit(err, exitFailure)
				}
				e, err := db.Find(abs)
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				if e != nil {
					fmt.Printf("source:     %s\n", e.Source)
					fmt.Printf("converted:  %s\n", e.Created.Format(time.RFC3339))
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Render a movie as an animated GIF",
			ArgsUsage: "FILE OUTFILE",
			Flags:     readFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, closer, err := openMovie(c, c.Args().First())
				if err != nil {
					return cli.Exit(err, exitSource)
				}
				defer closer.Close()

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				defer f.Close()

				if err := movie.EncodeGIF(f, r); err != nil {
					return cli.Exit(err, exitFailure)
				}

				return nil
			},
		},
		{
			Name:      "play",
			Usage:     "Play a movie on an SSD1306 attached over I²C",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "bus",
					EnvVars: []string{"OLEDMOVIE_I2C_BUS"},
					Usage:   "I²C bus name (default: first bus)",
				},
				&cli.BoolFlag{
					Name:  "loop",
					Usage: "play until interrupted",
				},
			}, readFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				ctx, stop := signalContext()
				defer stop()

				logger := newLogger(c)
				p := player.New(c.Float64("fps"), logger)

				var panel *player.Panel
				for {
					r, closer, err := openMovie(c, c.Args().First())
					if err != nil {
						return cli.Exit(err, exitSource)
					}

					if panel == nil {
						h := r.Header()
						if panel, err = player.OpenSSD1306(c.String("bus"), int(h.Width), int(h.Height)); err != nil {
							closer.Close()
							return cli.Exit(err, exitIO)
						}
						defer panel.Close()
					}

					_, err = p.Play(ctx, r, panel)
					closer.Close()
					if errors.Is(err, context.Canceled) {
						return nil
					}
					if err != nil {
						return cli.Exit(err, exitIO)
					}

					if !c.Bool("loop") {
						return nil
					}
				}
			},
		},
		{
			Name:  "list",
			Usage: "List converted movies recorded in the catalog",
			Action: func(c *cli.Context) error {
				db, err := openCatalog(c)
				if err != nil {
					return cli.Exit(err, exitIO)
				}
				if db == nil {
					return cli.Exit("no catalog, use --db", exitConfig)
				}
				defer db.Close()

				entries, err := db.List()
				if err != nil {
					return cli.Exit(err, exitIO)
				}

				for _, e := range entries {
					mode := "header"
					if e.Raw {
						mode = "raw"
					}
					fmt.Printf("%s\t%dx%d\t%.3ffps\t%d frames\t%s\t%s\n", e.Created.Format(time.RFC3339), e.Width, e.Height, float64(e.FPSMilli)/1000, e.Frames, mode, e.Output)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}
