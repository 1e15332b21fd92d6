package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	pw "github.com/playwright-community/playwright-go"

	ioutils "github.com/handiism/suno-downloader/internal/io"
)

// ErrProfileNotFound is returned when a persistent profile directory is
// configured but does not exist.
var ErrProfileNotFound = errors.New("browser user data directory not found")

// Options configures how Chromium is launched and how long pages are waited on.
type Options struct {
	// Headless runs the browser without a window.
	Headless bool

	// ExecutablePath points to a system Chromium. Empty uses the browser
	// installed by playwright.
	ExecutablePath string

	// UserDataDir, when set, launches a persistent context on this profile
	// so an existing login is reused. "~" is expanded. Must exist.
	UserDataDir string

	// Stealth injects a script hiding common automation markers.
	Stealth bool

	// UserAgent overrides the browser User-Agent when non-empty.
	UserAgent string

	// WaitSelector is waited for after navigation. Empty skips the wait.
	WaitSelector string

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration

	// SettleMin and SettleMax bound the random pause after the page loaded.
	SettleMin time.Duration
	SettleMax time.Duration

	// Logger receives non-fatal problems such as a selector timeout.
	// Nil uses the default logger.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// DefaultOptions returns headless Chromium with the usual waits.
func DefaultOptions() Options {
	return Options{
		Headless:          true,
		WaitSelector:      "h1",
		NavigationTimeout: 60 * time.Second,
		SelectorTimeout:   30 * time.Second,
		SettleMin:         time.Second,
		SettleMax:         3 * time.Second,
	}
}

// Renderer fetches fully rendered pages with a playwright-driven Chromium.
//
// One Renderer holds one browser process. Pages are opened per call and
// closed afterwards, so a Renderer can serve a whole URL list.
//
// Example usage:
//
//	r, err := browser.Launch(browser.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	html, err := r.Render(ctx, "https://suno.com/song/7cce556d-...")
type Renderer struct {
	opts Options

	pw      *pw.Playwright
	browser pw.Browser

	// persistent is set instead of browser when a profile directory is used.
	persistent pw.BrowserContext

	newPage func() (Page, error)
}

// Install downloads the playwright driver and, unless driverOnly is set,
// the Chromium build it expects.
func Install(driverOnly bool) error {
	return pw.Install(&pw.RunOptions{
		SkipInstallBrowsers: driverOnly,
		Browsers:            []string{"chromium"},
	})
}

// Launch starts playwright and Chromium.
func Launch(opts Options) (*Renderer, error) {
	var userDataDir string
	if opts.UserDataDir != "" {
		userDataDir = ioutils.ExpandHome(opts.UserDataDir)
		if info, err := os.Stat(userDataDir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userDataDir)
		}
	}

	instance, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	r := &Renderer{opts: opts, pw: instance}

	if userDataDir != "" {
		launch := pw.BrowserTypeLaunchPersistentContextOptions{
			Headless: pw.Bool(opts.Headless),
		}
		if opts.ExecutablePath != "" {
			launch.ExecutablePath = pw.String(opts.ExecutablePath)
		}
		if opts.UserAgent != "" {
			launch.UserAgent = pw.String(opts.UserAgent)
		}

		bctx, err := instance.Chromium.LaunchPersistentContext(userDataDir, launch)
		if err != nil {
			instance.Stop()
			return nil, fmt.Errorf("failed to launch browser with profile %s: %w", userDataDir, err)
		}
		if err := r.prepareContext(bctx); err != nil {
			bctx.Close()
			instance.Stop()
			return nil, err
		}
		r.persistent = bctx
		r.newPage = func() (Page, error) {
			page, err := bctx.NewPage()
			if err != nil {
				return nil, err
			}
			return &playwrightPage{page: page}, nil
		}
		return r, nil
	}

	launch := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = pw.String(opts.ExecutablePath)
	}

	browser, err := instance.Chromium.Launch(launch)
	if err != nil {
		instance.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	r.browser = browser
	r.newPage = func() (Page, error) {
		var ctxOpts pw.BrowserNewContextOptions
		if opts.UserAgent != "" {
			ctxOpts.UserAgent = pw.String(opts.UserAgent)
		}
		bctx, err := browser.NewContext(ctxOpts)
		if err != nil {
			return nil, err
		}
		if err := r.prepareContext(bctx); err != nil {
			bctx.Close()
			return nil, err
		}
		page, err := bctx.NewPage()
		if err != nil {
			bctx.Close()
			return nil, err
		}
		return &playwrightPage{page: page, owned: bctx}, nil
	}
	return r, nil
}

func (r *Renderer) prepareContext(bctx pw.BrowserContext) error {
	if !r.opts.Stealth {
		return nil
	}
	if err := bctx.AddInitScript(pw.Script{Content: pw.String(stealthScript)}); err != nil {
		return fmt.Errorf("failed to add stealth script: %w", err)
	}
	return nil
}

// NewPage opens a new tab.
func (r *Renderer) NewPage() (Page, error) {
	page, err := r.newPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

// Render opens url in a new tab and returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	page, err := r.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	return RenderPage(ctx, page, url, r.opts)
}

// Close shuts down the browser and playwright.
func (r *Renderer) Close() error {
	var errs []error
	if r.persistent != nil {
		errs = append(errs, r.persistent.Close())
	}
	if r.browser != nil {
		errs = append(errs, r.browser.Close())
	}
	if r.pw != nil {
		errs = append(errs, r.pw.Stop())
	}
	return errors.Join(errs...)
}

// RenderPage navigates page to url, waits for the configured selector and a
// short settle delay, then returns the page HTML.
//
// Navigation only waits for DOMContentLoaded; Suno pages never go network
// idle. A selector that never shows up is logged but not an error: the
// content is returned as is and extraction decides whether it is usable.
func RenderPage(ctx context.Context, page Page, url string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := page.Goto(url, LoadStateDOMContentLoaded, opts.NavigationTimeout); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if opts.WaitSelector != "" {
		if err := page.WaitForSelector(opts.WaitSelector, opts.SelectorTimeout); err != nil {
			opts.logger().Warn("selector did not appear, using the page as is",
				"selector", opts.WaitSelector, "url", url, "err", err)
		}
	}

	if err := sleep(ctx, settleDelay(opts.SettleMin, opts.SettleMax)); err != nil {
		return "", err
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// settleDelay picks a random duration in [lo, hi].
func settleDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
