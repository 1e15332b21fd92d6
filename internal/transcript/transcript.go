// Package transcript produces a mock timed transcript for an audio file.
//
// No speech recognition is performed. Segments are taken from the lyrics
// file written next to the audio, or from a fixed placeholder, and spaced
// at a fixed pace. The output format matches what a real recognizer would
// feed to a lyrics display: a JSON array of text segments with start and
// end times in seconds.
package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/suno-downloader/internal/model"
)

// Segment is one timed line of the transcript.
type Segment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

var placeholderLines = []string{
	"[Intro]",
	"(instrumental)",
	"[Verse]",
	"No lyrics were found for this recording",
	"This transcript is a placeholder",
	"[Outro]",
}

// Generator builds mock transcripts.
type Generator struct {
	// Delay simulates processing time before segments are produced.
	Delay time.Duration

	// LineDuration is the length of a lyric line, SectionDuration the
	// length of a "[Section]" marker, Gap the pause between segments.
	LineDuration    float64
	SectionDuration float64
	Gap             float64

	progress io.Writer
}

// NewGenerator creates a Generator writing progress messages to progress
// (os.Stderr when nil).
func NewGenerator(progress io.Writer) *Generator {
	if progress == nil {
		progress = os.Stderr
	}
	return &Generator{
		Delay:           2 * time.Second,
		LineDuration:    3.5,
		SectionDuration: 1.5,
		Gap:             0.5,
		progress:        progress,
	}
}

// Generate returns the transcript for the audio file at audioPath.
// The file must exist.
func (g *Generator) Generate(ctx context.Context, audioPath string) ([]Segment, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio file: %s is a directory", audioPath)
	}

	fmt.Fprintf(g.progress, "Processing audio file: %s\n", audioPath)

	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	lines, err := lyricsLines(audioPath)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = placeholderLines
	}

	return g.pace(lines), nil
}

// pace assigns consecutive time ranges to lines.
func (g *Generator) pace(lines []string) []Segment {
	segments := make([]Segment, 0, len(lines))
	start := 0.0
	for _, line := range lines {
		dur := g.LineDuration
		if isSectionMarker(line) {
			dur = g.SectionDuration
		}
		end := start + dur
		segments = append(segments, Segment{Text: line, StartTime: start, EndTime: end})
		start = end + g.Gap
	}
	return segments
}

// Write encodes segments as a single-line JSON array.
func Write(w io.Writer, segments []Segment) error {
	if segments == nil {
		segments = []Segment{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(segments)
}

// lyricsLines reads the non-empty lines of <audio name>.txt, if present.
func lyricsLines(audioPath string) ([]string, error) {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	f, err := os.Open(base + model.LyricsExt)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func isSectionMarker(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}
