package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"

	ioutils "github.com/handiism/suno-downloader/internal/io"
	"github.com/handiism/suno-downloader/internal/model"
)

// Scanner rebuilds tracks from audio files already on disk, so a playlist
// can be generated for an output directory filled by earlier runs.
//
// Example:
//
//	tracks, err := audio.NewScanner().Scan("/music/suno")
//	pl := model.NewPlaylist("suno", "/music/suno", model.PlaylistFormatM3U, tracks)
type Scanner struct{}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan reads every .mp3 in dir (not recursive), sorted by file name.
//
// Title and artist come from the ID3 tags, falling back to the file name.
// Files that cannot be decoded still produce a track with zero duration.
func (s *Scanner) Scan(dir string) ([]*model.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), model.AudioExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tracks := make([]*model.Track, 0, len(names))
	for _, name := range names {
		tracks = append(tracks, s.ReadTrack(filepath.Join(dir, name)))
	}
	return tracks, nil
}

// ReadTrack builds a track for one audio file.
func (s *Scanner) ReadTrack(path string) *model.Track {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	track := model.NewTrack(base, base, "", "")
	track.AudioPath = path
	if lyricsPath := filepath.Join(filepath.Dir(path), base+model.LyricsExt); ioutils.Exists(lyricsPath) {
		track.LyricsPath = lyricsPath
	}

	if md, err := readTags(path); err == nil {
		if md.Title() != "" {
			track.Title = md.Title()
		}
		track.DisplayName = md.Artist()
		track.Style = md.Genre()
		track.Lyrics = md.Lyrics()
	}

	if d, err := Duration(path); err == nil {
		track.Duration = d.Seconds()
	}

	return track
}

func readTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tag.ReadFrom(f)
}

// Duration decodes an MP3 file and returns its length.
func Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
