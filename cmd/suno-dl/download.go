package main

import (
	"context"
	"fmt"

	"github.com/handiism/suno-downloader/internal/browser"
	"github.com/handiism/suno-downloader/internal/download"
	"github.com/handiism/suno-downloader/internal/history"
	"github.com/handiism/suno-downloader/internal/logging"
	"github.com/handiism/suno-downloader/internal/mirror"
	"github.com/handiism/suno-downloader/internal/suno"
	"github.com/urfave/cli/v3"
)

// Fetch downloads the songs of a URL list using plain HTTP page fetches.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.collectURLs(cmd)
	if err != nil {
		return err
	}
	return r.download(ctx, cmd, urls, nil, nil)
}

// Render downloads the songs of a URL list, rendering every page in Chromium.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.collectURLs(cmd)
	if err != nil {
		return err
	}
	r.applyBrowserFlags(cmd)

	renderer, err := browser.Launch(r.browserOptions())
	if err != nil {
		return err
	}
	defer renderer.Close()

	return r.download(ctx, cmd, urls, download.BrowserSource(renderer), nil)
}

// Library scrolls through a logged-in library and downloads every song the
// feed API returned on the way.
func (r *Runner) Library(ctx context.Context, cmd *cli.Command) error {
	r.applyBrowserFlags(cmd)
	if cmd.IsSet("library-url") {
		r.settings.LibraryURL = cmd.String("library-url")
	}
	if cmd.IsSet("max-scrolls") {
		r.settings.MaxScrolls = int(cmd.Int("max-scrolls"))
	}
	if cmd.IsSet("scroll-delay") {
		r.settings.ScrollDelay = cmd.Float("scroll-delay")
	}
	if r.settings.BrowserUserDataDir == "" {
		r.logger.Warn("no browser profile configured; the library page needs a logged-in session (--profile)")
	}

	renderer, err := browser.Launch(r.browserOptions())
	if err != nil {
		return err
	}
	defer renderer.Close()

	lib := suno.NewLibrary()
	session := browser.NewLibrarySession(r.settings.ToLibraryOptions(), logging.WithLogger(r.logger, "source", "library"))
	stats, err := renderer.CollectLibrary(ctx, session, lib)
	r.logger.Info("library session finished",
		"scrolls", stats.Scrolls, "responses", stats.Responses, "failed", stats.Failed, "skipped", stats.Skipped, "songs", lib.Len())
	if err != nil {
		if ctx.Err() != nil || lib.Len() == 0 {
			return err
		}
		r.logger.Warn("library session ended early, downloading what was collected", "err", err)
	}

	return r.download(ctx, cmd, nil, nil, lib)
}

// collectURLs returns the song URLs given as arguments or --url flags, or
// else the entries of the URL list file.
func (r *Runner) collectURLs(cmd *cli.Command) ([]string, error) {
	if cmd.IsSet("strategy") {
		r.settings.Strategies = cmd.StringSlice("strategy")
	}

	urls := append(cmd.Args().Slice(), cmd.StringSlice("url")...)
	if len(urls) > 0 {
		return urls, nil
	}

	if cmd.IsSet("urls") {
		r.settings.URLFile = cmd.String("urls")
	}
	r.logger.Debug("reading URL list", "path", r.settings.URLFile)
	return suno.ReadURLList(r.settings.URLFile)
}

func (r *Runner) applyBrowserFlags(cmd *cli.Command) {
	if cmd.IsSet("headed") {
		r.settings.BrowserHeadless = !cmd.Bool("headed")
	}
	if cmd.IsSet("profile") {
		r.settings.BrowserUserDataDir = cmd.String("profile")
	}
	if cmd.IsSet("stealth") {
		r.settings.BrowserStealth = cmd.Bool("stealth")
	}
	if cmd.IsSet("executable") {
		r.settings.BrowserExecutable = cmd.String("executable")
	}
	if cmd.IsSet("wait-selector") {
		r.settings.WaitSelector = cmd.String("wait-selector")
	}
}

func (r *Runner) browserOptions() browser.Options {
	opts := r.settings.ToBrowserOptions()
	opts.Logger = logging.WithLogger(r.logger, "source", "browser")
	return opts
}

// download runs the manager over urls, or over lib when it is set.
func (r *Runner) download(ctx context.Context, cmd *cli.Command, urls []string, source download.PageSource, lib *suno.Library) error {
	opts, cleanup, err := r.managerOptions()
	if err != nil {
		return err
	}
	defer cleanup()
	if source != nil {
		opts = append(opts, download.WithPageSource(source))
	}

	manager, err := download.NewManager(r.settings, r.progress, opts...)
	if err != nil {
		return err
	}

	if lib != nil {
		err = manager.InitializeFromLibrary(lib)
	} else {
		r.logger.Info("processing song pages", "count", len(urls), "output", r.settings.OutputDir)
		err = manager.Initialize(ctx, urls)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		for _, name := range manager.GetTrackNames() {
			r.writePlain("%s\n", name)
		}
		r.logger.Info("dry run, nothing downloaded")
		return nil
	}

	if err := manager.StartDownloads(ctx); err != nil {
		return err
	}

	received, _, files, filesTotal := manager.GetProgress()
	r.logger.Info("complete", "files", fmt.Sprintf("%d/%d", files, filesTotal), "mb", fmt.Sprintf("%.2f", float64(received)/1024/1024))
	return nil
}

// managerOptions wires the optional S3 mirror and history catalog.
func (r *Runner) managerOptions() ([]download.Option, func(), error) {
	var opts []download.Option
	cleanup := func() {}

	if r.settings.MirrorEnabled() {
		uploader, err := mirror.New(r.settings.ToMirrorConfig())
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to set up S3 mirror: %w", err)
		}
		r.logger.Debug("mirroring to S3", "bucket", r.settings.S3Bucket, "prefix", r.settings.S3Prefix)
		opts = append(opts, download.WithUploader(uploader))
	}

	if r.settings.HistoryPath != "" {
		store, err := history.Open(r.settings.HistoryPath)
		if err != nil {
			r.logger.Warn("history catalog unavailable", "path", r.settings.HistoryPath, "err", err)
		} else {
			opts = append(opts, download.WithRecorder(store))
			cleanup = func() {
				if err := store.Close(); err != nil {
					r.logger.Warn("closing history catalog failed", "err", err)
				}
			}
		}
	}

	return opts, cleanup, nil
}
