package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/suno-downloader/internal/config"
	"github.com/handiism/suno-downloader/internal/logging"
	"github.com/urfave/cli/v3"
)

const version = "0.3.0"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger(os.Stderr, "info")
	runner := NewRunner(RunnerOpts{Logger: logger})

	err := newApp(runner).Run(ctx, os.Args)
	code := exitCode(ctx, err)
	switch code {
	case 130:
		logger.Warn("interrupted")
	case 1:
		logger.Error("fatal", "err", err)
	}
	return code
}

// exitCode maps the result of a run to the process exit status.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "suno-dl",
		Usage:    "Download songs and lyrics from Suno",
		Version:  version,
		Flags:    globalFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (.toml, .yaml or .json)",
			Value:   config.DefaultPath(),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Show verbose output",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides config)",
		},
		&cli.StringFlag{
			Name:  "debug-dir",
			Usage: "Directory for pages that could not be parsed",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"j"},
			Usage:   "Songs downloaded at the same time",
		},
		&cli.BoolFlag{
			Name:  "playlist",
			Usage: "Create a playlist of the downloaded songs",
		},
		&cli.BoolFlag{
			Name:  "no-tags",
			Usage: "Do not write ID3 tags or cover art",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record processed songs in the history catalog",
		},
	}
}
