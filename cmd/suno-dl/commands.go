package main

import "github.com/urfave/cli/v3"

func urlFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "urls",
			Aliases: []string{"u"},
			Usage:   "URL list file, one song URL per line (overrides config)",
		},
		&cli.StringSliceFlag{
			Name:  "url",
			Usage: "Song URL to download; repeat for several. Replaces the URL list file",
		},
		&cli.StringSliceFlag{
			Name:  "strategy",
			Usage: "Extraction strategy to try, in order: script-tag, next-data, persona, is-public",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Parse pages without downloading",
		},
	}
}

func browserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "headed",
			Usage: "Show the browser window",
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Chromium user data directory to reuse a logged-in session",
		},
		&cli.BoolFlag{
			Name:  "stealth",
			Usage: "Hide common automation markers from the page",
		},
		&cli.StringFlag{
			Name:  "executable",
			Usage: "Path to a system Chromium",
		},
		&cli.StringFlag{
			Name:  "wait-selector",
			Usage: "CSS selector waited for after navigation",
		},
	}
}

// fetchCommand downloads songs from plain HTTP page fetches
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Download songs from a URL list with plain HTTP requests",
		ArgsUsage: "[song URL...]",
		Flags:     urlFlags(),
		Action:    r.Fetch,
	}
}

// renderCommand downloads songs from browser-rendered pages
func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Download songs from a URL list, rendering each page in Chromium",
		ArgsUsage: "[song URL...]",
		Flags:     append(urlFlags(), browserFlags()...),
		Action:    r.Render,
	}
}

// libraryCommand collects a whole library through the feed API
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Download every song of a logged-in library by scrolling it in Chromium",
		Flags: append(browserFlags(),
			&cli.StringFlag{
				Name:  "library-url",
				Usage: "Library page to open",
			},
			&cli.IntFlag{
				Name:  "max-scrolls",
				Usage: "Stop after this many scrolls (0 = until the page stops growing)",
			},
			&cli.FloatFlag{
				Name:  "scroll-delay",
				Usage: "Seconds to wait after each scroll",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Collect the library without downloading",
			},
		),
		Action: r.Library,
	}
}

// transcriptCommand prints a mock transcript
func transcriptCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "transcript",
		Usage:     "Print a timed transcript of an audio file as JSON",
		ArgsUsage: "<audio file>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "delay",
				Usage: "Seconds of simulated processing",
				Value: 2,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Transcript,
	}
}

// scanCommand rebuilds a playlist from files on disk
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Read the songs in a directory and write a playlist for them",
		ArgsUsage: "[directory]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Playlist format: m3u, pls, wpl or zpl",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "List the songs as JSON instead of writing a playlist",
			},
		},
		Action: r.Scan,
	}
}

// historyCommand lists the history catalog
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recently processed songs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of songs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file helpers",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write a commented example configuration to --config",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration as TOML",
				Action: r.ConfigShow,
			},
		},
	}
}

// installCommand installs the browser driver
func installCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the playwright driver and Chromium used by render and library",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "driver-only",
				Usage: "Skip the Chromium download when browser_executable points to a system Chromium",
			},
		},
		Action: r.Install,
	}
}
