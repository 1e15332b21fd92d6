package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-stealth"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	ioutils "github.com/handiism/suno-downloader/internal/io"
)

// DefaultUserAgent is a desktop Chrome User-Agent. Suno serves the full song
// page, including the embedded clip JSON, only to browser-like clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// StatusError is returned when a server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Retryable reports whether the status is worth retrying (429, 5xx).
func (e *StatusError) Retryable() bool {
	return stealth.IsRetryableStatus(e.StatusCode)
}

// Client wraps HTTP operations with browser-like headers, retries and pacing.
//
// Client provides:
//   - Chrome request headers and User-Agent
//   - Timeout handling
//   - Retry with exponential backoff on transport errors and 429/5xx
//   - Optional request rate limiting
//   - Atomic file download with progress tracking
//
// Example usage:
//
//	client := NewClient(WithRetry(3, time.Second), WithRateLimit(2))
//
//	// Fetch a song page
//	html, err := client.GetString(ctx, "https://suno.com/song/7cce556d-...")
//
//	// Download file with progress
//	err = client.DownloadFile(ctx, mp3URL, "/path/to/Song.mp3", func(written, total int64) {
//	    percent := float64(written) / float64(total) * 100
//	    fmt.Printf("%.1f%%\n", percent)
//	})
type Client struct {
	httpClient   *http.Client
	userAgent    string
	maxTries     uint
	initialDelay time.Duration
	maxDelay     time.Duration
	limiter      *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header. An empty string picks a random
// Chrome User-Agent per request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetry sets the maximum number of attempts and the first backoff delay.
func WithRetry(maxTries int, initialDelay time.Duration) Option {
	return func(c *Client) {
		if maxTries < 1 {
			maxTries = 1
		}
		c.maxTries = uint(maxTries)
		if initialDelay > 0 {
			c.initialDelay = initialDelay
		}
	}
}

// WithRateLimit limits requests to rps per second. Zero or negative disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second timeout
//   - DefaultUserAgent
//   - 3 attempts, backoff starting at 1 second
//   - no rate limit
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    DefaultUserAgent,
		maxTries:     3,
		initialDelay: time.Second,
		maxDelay:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails after all retries
//   - The response status is not 200 OK (a *StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return retry(ctx, c, func() ([]byte, error) {
		resp, err := c.do(ctx, http.MethodGet, url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
}

// GetString performs a GET request and returns the response body as a string.
//
// Example:
//
//	html, err := client.GetString(ctx, "https://suno.com/song/7cce556d-...")
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if the request fails or the server doesn't return a
// Content-Length header.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	return retry(ctx, c, func() (int64, error) {
		resp, err := c.do(ctx, http.MethodHead, url)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()

		if resp.ContentLength < 0 {
			return 0, backoff.Permanent(fmt.Errorf("no Content-Length header for %s", url))
		}
		return resp.ContentLength, nil
	})
}

// DownloadFile downloads a file to destPath with optional progress callback.
//
// The body is streamed to a hidden temporary file next to destPath, which is
// renamed into place only once the whole body has been written. A failed or
// cancelled download leaves nothing under destPath.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Example:
//
//	err := client.DownloadFile(ctx, mp3URL, "/music/Song.mp3", nil)
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	_, err := retry(ctx, c, func() (struct{}, error) {
		return struct{}{}, c.downloadOnce(ctx, url, destPath, onProgress)
	})
	return err
}

func (c *Client) downloadOnce(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := ioutils.CreateTemp(destPath)
	if err != nil {
		return backoff.Permanent(err)
	}

	var writer io.Writer = tmp
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   tmp,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		ioutils.DiscardTemp(tmp)
		return err
	}

	if err := ioutils.CommitTemp(tmp, destPath); err != nil {
		return backoff.Permanent(err)
	}
	return nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images. For MP3s use
// DownloadFile to stream directly to disk.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// do sends one request with browser headers. Non-retryable failures are
// marked permanent for backoff.
func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
		if statusErr.Retryable() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	for k, v := range stealth.ChromeHeaders() {
		req.Header.Set(k, v)
	}
	// Let the transport negotiate gzip and decode it.
	req.Header.Del("Accept-Encoding")

	ua := c.userAgent
	if ua == "" {
		ua = stealth.RandomUserAgent()
	}
	req.Header.Set("User-Agent", ua)
}

func retry[T any](ctx context.Context, c *Client, op backoff.Operation[T]) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialDelay
	bo.MaxInterval = c.maxDelay

	return backoff.Retry(ctx, op, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
}
