package model

import (
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/handiism/suno-downloader/internal/io"
)

const (
	// DefaultTitle is used when a clip carries no title.
	DefaultTitle = "untitled"

	// AudioExt and LyricsExt are the extensions of the two derived files.
	AudioExt  = ".mp3"
	LyricsExt = ".txt"
)

// Track is the record extracted from one song page or feed entry.
//
// A Track is transient: it is built from one HTML fragment or API response
// body and only its two derived outputs, an audio file and a lyrics file,
// survive the run. Both are named after the sanitized title.
//
// Example:
//
//	track := NewTrack("7cce556d", "Night Drive", audioURL, lyrics)
//	track.ResolvePaths("/music/suno")
//	// track.AudioPath  = "/music/suno/Night Drive.mp3"
//	// track.LyricsPath = "/music/suno/Night Drive.txt"
type Track struct {
	// ID is the source-assigned unique identifier of the clip.
	ID string

	// Title is the user-supplied song title. Not filesystem-safe.
	Title string

	// AudioURL is where the MP3 is served from. Empty means no audio.
	AudioURL string

	// Lyrics is the prompt/lyrics text. May be empty.
	Lyrics string

	// ImageURL points to the cover image, if any.
	ImageURL string

	// DisplayName is the creator's display name, used as the artist tag.
	DisplayName string

	// Handle is the creator's handle.
	Handle string

	// Style holds the style tags the song was generated with.
	Style string

	// Duration is the track length in seconds (0 when unknown).
	Duration float64

	// CreatedAt is when the clip was created.
	CreatedAt time.Time

	// SourceURL is the page the track was extracted from.
	// Empty for tracks collected from feed responses.
	SourceURL string

	// AudioPath and LyricsPath are the computed local file paths.
	// Set by ResolvePaths.
	AudioPath  string
	LyricsPath string
}

// NewTrack creates a Track, applying the default title when title is empty.
func NewTrack(id, title, audioURL, lyrics string) *Track {
	if title == "" {
		title = DefaultTitle
	}
	return &Track{
		ID:       id,
		Title:    title,
		AudioURL: audioURL,
		Lyrics:   lyrics,
	}
}

// HasAudio returns true if the track has an audio reference to download.
func (t *Track) HasAudio() bool {
	return t.AudioURL != ""
}

// HasLyrics returns true if the lyrics are non-empty after trimming.
func (t *Track) HasLyrics() bool {
	return strings.TrimSpace(t.Lyrics) != ""
}

// HasArtwork returns true if the track has a cover image.
func (t *Track) HasArtwork() bool {
	return t.ImageURL != ""
}

// FileName returns the sanitized base name (without extension) used for
// both derived files.
//
// When sanitization leaves nothing (a title made only of reserved
// characters), "untitled_<id>" is used so the files still get a name.
func (t *Track) FileName() string {
	name := ioutils.SanitizeFileName(t.Title)
	if strings.TrimSpace(name) == "" {
		name = ioutils.SanitizeFileName(DefaultTitle + "_" + t.ID)
	}
	return name
}

// ResolvePaths computes AudioPath and LyricsPath inside outputDir.
func (t *Track) ResolvePaths(outputDir string) {
	name := t.FileName()
	t.AudioPath = filepath.Join(outputDir, name+AudioExt)
	t.LyricsPath = filepath.Join(outputDir, name+LyricsExt)
}

// Artist returns the name used for the artist tag and playlists.
func (t *Track) Artist() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Handle
}
