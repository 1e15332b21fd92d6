// Package http provides the HTTP client used to fetch song pages, audio
// files and cover art.
//
// The Client in this package handles:
//   - Browser-like request headers (Chrome header set and User-Agent)
//   - Retry with exponential backoff on transport errors and 429/5xx responses
//   - Request pacing with a token bucket
//   - Atomic file downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.WithRetry(3, time.Second))
//
//	// Fetch song page
//	html, err := client.GetString(ctx, "https://suno.com/song/7cce556d-...")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, mp3URL, "/path/to/Song.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Errors
//
// Non-200 responses are reported as *StatusError:
//
//	var se *http.StatusError
//	if errors.As(err, &se) && se.StatusCode == 404 {
//	    // song deleted or private
//	}
package http
