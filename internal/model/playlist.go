package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/suno-downloader/internal/io"
)

// Playlist groups the tracks written by one run (or found by a scan) so a
// playlist file can be generated next to them.
type Playlist struct {
	// Name is the playlist title.
	Name string

	// Tracks contains the entries in playlist order.
	Tracks []*Track

	// Path is the computed local file path of the playlist file.
	Path string
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a config value ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// NewPlaylist creates a playlist stored in dir as <sanitized name><ext>.
func NewPlaylist(name, dir string, format PlaylistFormat, tracks []*Track) *Playlist {
	fileName := ioutils.SanitizeFileName(name)
	if strings.TrimSpace(fileName) == "" {
		fileName = "playlist"
	}
	return &Playlist{
		Name:   name,
		Tracks: tracks,
		Path:   filepath.Join(dir, fileName+format.Extension()),
	}
}
