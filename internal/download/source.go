package download

import (
	"context"

	"github.com/handiism/suno-downloader/internal/browser"
	"github.com/handiism/suno-downloader/internal/http"
)

// PageSource returns the HTML of a song page.
type PageSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageSourceFunc adapts a plain function to PageSource.
type PageSourceFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f PageSourceFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPSource fetches pages with a plain GET. The page is returned as served,
// before any client-side rendering.
func HTTPSource(c *http.Client) PageSource {
	return PageSourceFunc(c.GetString)
}

// BrowserSource fetches fully rendered pages through Chromium.
func BrowserSource(r *browser.Renderer) PageSource {
	return PageSourceFunc(r.Render)
}
