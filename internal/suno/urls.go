package suno

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ReadURLList reads a URL list file: one URL per line, blank lines and
// lines starting with '#' ignored, each URL cleaned with CleanURL.
//
// Returns ErrNoURLs if the file holds no usable entries.
func ReadURLList(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("URL list %q not found: %w", filePath, err)
		}
		return nil, fmt.Errorf("failed to open URL list %q: %w", filePath, err)
	}
	defer f.Close()

	urls, err := ParseURLList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list %q: %w", filePath, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoURLs, filePath)
	}
	return urls, nil
}

// ParseURLList reads URLs from r with the same rules as ReadURLList.
func ParseURLList(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if u := CleanURL(line); u != "" {
			urls = append(urls, u)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// CleanURL trims whitespace and drops the query string and fragment.
//
//	CleanURL("https://suno.com/song/abc?sh=xyz") // "https://suno.com/song/abc"
func CleanURL(raw string) string {
	u := strings.TrimSpace(raw)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return u
}

// SongIDFromURL returns the last path segment of a song URL, or "" if there is none.
func SongIDFromURL(raw string) string {
	u := strings.TrimRight(CleanURL(raw), "/")
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
		if j := strings.Index(u, "/"); j >= 0 {
			u = u[j:]
		} else {
			return ""
		}
	}
	seg := path.Base(u)
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}
