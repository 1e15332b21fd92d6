package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/handiism/suno-downloader/internal/suno"
)

const (
	scrollHeightJS   = "document.body.scrollHeight"
	scrollToBottomJS = "window.scrollTo(0, document.body.scrollHeight)"
)

// LibraryOptions configures a library session.
type LibraryOptions struct {
	// URL is the library page, normally https://suno.com/me.
	URL string

	// FeedMatch is the substring identifying feed API responses.
	FeedMatch string

	// ScrollDelay is waited after each scroll for new content to load.
	ScrollDelay time.Duration

	// MaxScrolls bounds the scroll loop. Zero means no bound.
	MaxScrolls int

	NavigationTimeout time.Duration
}

// DefaultLibraryOptions returns the options for the Suno library page.
func DefaultLibraryOptions() LibraryOptions {
	return LibraryOptions{
		URL:               "https://suno.com/me",
		FeedMatch:         "/api/feed/",
		ScrollDelay:       3 * time.Second,
		MaxScrolls:        500,
		NavigationTimeout: 90 * time.Second,
	}
}

// LibraryStats summarizes one library session.
type LibraryStats struct {
	Scrolls   int
	Responses int
	Failed    int

	// Skipped counts feed entries that did not decode.
	Skipped int
	Tracks  int
}

// LibrarySession collects every song of a logged-in library by listening to
// the feed API while the page is scrolled to the bottom.
type LibrarySession struct {
	opts   LibraryOptions
	logger *log.Logger

	mu    sync.Mutex
	stats LibraryStats
}

// NewLibrarySession creates a session. A nil logger uses the default logger.
func NewLibrarySession(opts LibraryOptions, logger *log.Logger) *LibrarySession {
	if logger == nil {
		logger = log.Default()
	}
	return &LibrarySession{opts: opts, logger: logger}
}

// CollectLibrary opens a tab on r, runs the session and closes the tab.
// All intercepted responses have been added to lib when it returns.
func (r *Renderer) CollectLibrary(ctx context.Context, s *LibrarySession, lib *suno.Library) (LibraryStats, error) {
	page, err := r.NewPage()
	if err != nil {
		return LibraryStats{}, err
	}

	_, err = s.Collect(ctx, page, lib)
	if cerr := page.Close(); err == nil && cerr != nil {
		s.logger.Warn("closing library tab failed", "err", cerr)
	}
	return s.Stats(), err
}

// Collect registers the feed listener, opens the library and scrolls until
// the document height stops changing or MaxScrolls is reached.
//
// Feed bodies may still be in flight when Collect returns; closing the page
// waits for them.
func (s *LibrarySession) Collect(ctx context.Context, page Page, lib *suno.Library) (LibraryStats, error) {
	// Listener first so the initial feed request is not missed.
	page.OnResponse(func(url string, body func() ([]byte, error)) {
		if !strings.Contains(url, s.opts.FeedMatch) {
			return
		}
		s.handleFeed(url, body, lib)
	})

	s.logger.Info("opening library", "url", s.opts.URL)
	if err := page.Goto(s.opts.URL, LoadStateDOMContentLoaded, s.opts.NavigationTimeout); err != nil {
		return s.Stats(), fmt.Errorf("failed to navigate to %s: %w", s.opts.URL, err)
	}

	lastHeight, err := scrollHeight(page)
	if err != nil {
		return s.Stats(), err
	}

	for {
		if s.opts.MaxScrolls > 0 && s.scrolls() >= s.opts.MaxScrolls {
			s.logger.Warn("scroll limit reached", "scrolls", s.opts.MaxScrolls)
			break
		}

		if _, err := page.Evaluate(scrollToBottomJS); err != nil {
			return s.Stats(), fmt.Errorf("failed to scroll: %w", err)
		}
		s.mu.Lock()
		s.stats.Scrolls++
		s.mu.Unlock()
		s.logger.Debug("scrolled", "height", lastHeight)

		if err := sleep(ctx, s.opts.ScrollDelay); err != nil {
			return s.Stats(), err
		}

		height, err := scrollHeight(page)
		if err != nil {
			return s.Stats(), err
		}
		if height == lastHeight {
			s.logger.Info("reached the bottom of the library")
			break
		}
		lastHeight = height
	}

	stats := s.Stats()
	s.logger.Info("library scan complete", "songs", lib.Len(), "responses", stats.Responses)
	return stats, nil
}

// Stats returns the counters collected so far.
func (s *LibrarySession) Stats() LibraryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *LibrarySession) scrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Scrolls
}

func (s *LibrarySession) handleFeed(url string, body func() ([]byte, error), lib *suno.Library) {
	data, err := body()
	if err == nil {
		var added, skipped int
		added, skipped, err = lib.AddFeed(data)
		if err == nil {
			s.mu.Lock()
			s.stats.Responses++
			s.stats.Skipped += skipped
			s.stats.Tracks = lib.Len()
			s.mu.Unlock()
			if skipped > 0 {
				s.logger.Warn("feed entries could not be decoded", "url", url, "skipped", skipped)
			}
			if added > 0 {
				s.logger.Info("feed response", "new", added, "total", lib.Len())
			} else {
				s.logger.Debug("feed response", "url", url, "new", 0)
			}
			return
		}
	}

	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()
	s.logger.Warn("could not process feed response", "url", url, "err", err)
}

func scrollHeight(page Page) (float64, error) {
	v, err := page.Evaluate(scrollHeightJS)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return toFloat(v)
}

// toFloat normalizes numbers returned by page evaluation.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected scroll height %v (%T)", v, v)
	}
}
