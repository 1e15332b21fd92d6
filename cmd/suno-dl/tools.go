package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/handiism/suno-downloader/internal/audio"
	"github.com/handiism/suno-downloader/internal/browser"
	"github.com/handiism/suno-downloader/internal/config"
	"github.com/handiism/suno-downloader/internal/history"
	"github.com/handiism/suno-downloader/internal/model"
	"github.com/handiism/suno-downloader/internal/transcript"
	"github.com/urfave/cli/v3"
)

var errNoHistory = errors.New("history catalog is disabled (history_path is empty)")

// Transcript prints a mock timed transcript for an audio file.
func (r *Runner) Transcript(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: suno-dl transcript <audio file>")
	}

	gen := transcript.NewGenerator(r.errOut)
	gen.Delay = config.Seconds(cmd.Float("delay"))

	segments, err := gen.Generate(ctx, path)
	if err != nil {
		return err
	}
	if cmd.Bool("pretty") {
		return r.writeJSON(segments, true)
	}
	return transcript.Write(r.output, segments)
}

type scannedSong struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	Duration   float64 `json:"duration"`
	AudioPath  string  `json:"audio_path"`
	LyricsPath string  `json:"lyrics_path,omitempty"`
}

// Scan reads the songs in a directory and writes a playlist for them.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = r.settings.OutputDir
	}

	tracks, err := audio.NewScanner().Scan(dir)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		songs := make([]scannedSong, len(tracks))
		for i, t := range tracks {
			songs[i] = scannedSong{
				Title:      t.Title,
				Artist:     t.Artist(),
				Duration:   t.Duration,
				AudioPath:  t.AudioPath,
				LyricsPath: t.LyricsPath,
			}
		}
		return r.writeJSON(songs, true)
	}

	if len(tracks) == 0 {
		r.logger.Warn("no songs found", "dir", dir)
		return nil
	}

	format := r.settings.PlaylistFormatValue()
	if cmd.IsSet("format") {
		format = model.ParsePlaylistFormat(cmd.String("format"))
	}
	name := r.settings.PlaylistName
	if cmd.IsSet("name") {
		name = cmd.String("name")
	}

	pl := model.NewPlaylist(name, dir, format, tracks)
	if err := audio.NewPlaylistCreator(format, r.settings.M3UExtended).WritePlaylist(pl); err != nil {
		return err
	}
	r.logger.Info("playlist written", "path", pl.Path, "songs", len(tracks))
	return nil
}

type historyRow struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SourceURL    string    `json:"source_url,omitempty"`
	AudioStatus  string    `json:"audio"`
	LyricsStatus string    `json:"lyrics"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// History lists the most recently processed songs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.settings.HistoryPath == "" {
		return errNoHistory
	}

	store, err := history.Open(r.settings.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]historyRow, len(entries))
		for i, e := range entries {
			rows[i] = historyRow{
				ID:           e.ID,
				Title:        e.Title,
				SourceURL:    e.SourceURL,
				AudioStatus:  string(e.AudioStatus),
				LyricsStatus: string(e.LyricsStatus),
				ProcessedAt:  e.ProcessedAt,
			}
		}
		return r.writeJSON(rows, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No songs processed yet.\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PROCESSED", "TITLE", "AUDIO", "LYRICS", "ID")
	for _, e := range entries {
		t.Row(
			e.ProcessedAt.Local().Format("2006-01-02 15:04"),
			e.Title,
			string(e.AudioStatus),
			string(e.LyricsStatus),
			e.ID,
		)
	}
	return r.writePlain("%s\n", t.Render())
}

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.WriteExample(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return nil
}

// ConfigShow prints the effective configuration, flags included.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	shown := *r.settings
	if shown.S3SecretKey != "" {
		shown.S3SecretKey = redacted
	}
	if err := toml.NewEncoder(r.output).Encode(&shown); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

const redacted = "********"

// Install downloads the playwright driver and Chromium.
func (r *Runner) Install(ctx context.Context, cmd *cli.Command) error {
	driverOnly := cmd.Bool("driver-only")
	r.logger.Info("installing browser driver", "chromium", !driverOnly)
	if err := browser.Install(driverOnly); err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	r.logger.Info("browser driver installed")
	return nil
}
