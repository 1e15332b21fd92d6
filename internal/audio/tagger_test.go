package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"

	"github.com/handiism/suno-downloader/internal/model"
)

func writeFakeMP3(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not really mpeg audio data"), 0644); err != nil {
		t.Fatal(err)
	}
}

func taggedTrack(dir string) *model.Track {
	track := model.NewTrack("7cce", "Night Drive", "https://cdn1.suno.ai/7cce.mp3", "[Verse]\nheadlights on")
	track.DisplayName = "Night Owl"
	track.Style = "synthwave"
	track.SourceURL = "https://suno.com/song/7cce"
	track.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	track.ResolvePaths(dir)
	return track
}

func TestTagger_SaveTags(t *testing.T) {
	dir := t.TempDir()
	track := taggedTrack(dir)
	writeFakeMP3(t, track.AudioPath)

	if err := NewTagger(nil).SaveTags(track, []byte{0xFF, 0xD8, 0xFF, 0xE0}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	f, err := os.Open(track.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		t.Fatalf("read tags back: %v", err)
	}
	if md.Title() != "Night Drive" {
		t.Errorf("Title = %q", md.Title())
	}
	if md.Artist() != "Night Owl" {
		t.Errorf("Artist = %q", md.Artist())
	}
	if md.Album() != "Suno" {
		t.Errorf("Album = %q", md.Album())
	}

	id3, err := id3v2.Open(track.AudioPath, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer id3.Close()

	uslt := id3.GetFrames(id3.CommonID("Unsynchronised lyrics/text transcription"))
	if len(uslt) != 1 {
		t.Fatalf("got %d lyrics frames, want 1", len(uslt))
	}
	if lf, ok := uslt[0].(id3v2.UnsynchronisedLyricsFrame); !ok || lf.Lyrics != track.Lyrics {
		t.Errorf("lyrics frame = %+v", uslt[0])
	}
	if pics := id3.GetFrames(id3.CommonID("Attached picture")); len(pics) != 1 {
		t.Errorf("got %d picture frames, want 1", len(pics))
	}
}

func TestTagger_ModifyTagsOff(t *testing.T) {
	dir := t.TempDir()
	track := taggedTrack(dir)
	writeFakeMP3(t, track.AudioPath)

	cfg := DefaultTagConfig()
	cfg.ModifyTags = false
	if err := NewTagger(cfg).SaveTags(track, nil); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	id3, err := id3v2.Open(track.AudioPath, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer id3.Close()
	if id3.Title() != "" {
		t.Errorf("Title = %q, want untouched", id3.Title())
	}
}

func TestTagger_MissingFile(t *testing.T) {
	track := taggedTrack(t.TempDir())
	if err := NewTagger(nil).SaveTags(track, nil); err == nil {
		t.Error("expected error for missing audio file")
	}
}

func TestScanner_Scan(t *testing.T) {
	dir := t.TempDir()

	tagged := taggedTrack(dir)
	writeFakeMP3(t, tagged.AudioPath)
	if err := NewTagger(nil).SaveTags(tagged, nil); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	writeFakeMP3(t, filepath.Join(dir, "Another Song.mp3"))
	os.WriteFile(filepath.Join(dir, "Another Song.txt"), []byte("la la"), 0644)
	writeFakeMP3(t, filepath.Join(dir, ".Night Drive.mp3.123.part"))
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644)

	tracks, err := NewScanner().Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}

	untagged := tracks[0]
	if untagged.Title != "Another Song" || untagged.Duration != 0 {
		t.Errorf("untagged track = %+v", untagged)
	}
	if untagged.LyricsPath != filepath.Join(dir, "Another Song.txt") {
		t.Errorf("LyricsPath = %q", untagged.LyricsPath)
	}

	fromTags := tracks[1]
	if fromTags.Title != "Night Drive" || fromTags.Artist() != "Night Owl" {
		t.Errorf("tagged track = %+v", fromTags)
	}
}

func TestScanner_MissingDir(t *testing.T) {
	if _, err := NewScanner().Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
