package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/handiism/suno-downloader/internal/config"
	"github.com/handiism/suno-downloader/internal/download"
	"github.com/handiism/suno-downloader/internal/logging"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	settings *config.Settings
	logger   *log.Logger
	output   io.Writer
	errOut   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Settings *config.Settings
	Logger   *log.Logger
	Output   io.Writer
	ErrOut   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil, opts.Settings.LogLevel)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}

	return &Runner{
		settings: opts.Settings,
		logger:   opts.Logger,
		output:   opts.Output,
		errOut:   opts.ErrOut,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		fetchCommand, renderCommand, libraryCommand, transcriptCommand, scanCommand, historyCommand, configCommand, installCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration file and applies the global flags on top.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if cmd.IsSet("output") {
		settings.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("debug-dir") {
		settings.DebugDir = cmd.String("debug-dir")
	}
	if cmd.IsSet("concurrency") {
		settings.MaxConcurrentDownloads = int(cmd.Int("concurrency"))
	}
	if cmd.Bool("playlist") {
		settings.CreatePlaylist = true
	}
	if cmd.Bool("no-tags") {
		settings.ModifyTags = false
		settings.SaveCoverArtInTags = false
	}
	if cmd.Bool("no-history") {
		settings.HistoryPath = ""
	}
	if cmd.Bool("verbose") {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}

	r.settings = settings
	r.logger.SetLevel(logging.ParseLevel(settings.LogLevel))
	return ctx, nil
}

// progress forwards download events to the logger.
func (r *Runner) progress(event download.ProgressEvent) {
	switch event.Level {
	case download.LevelVerbose:
		r.logger.Debug(event.Message)
	case download.LevelWarning:
		r.logger.Warn(event.Message)
	case download.LevelError:
		r.logger.Error(event.Message)
	default:
		r.logger.Info(event.Message)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
