package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestGenerator(progress *bytes.Buffer) *Generator {
	g := NewGenerator(progress)
	g.Delay = 0
	return g
}

func TestGenerator_FromLyrics(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "Night Drive.mp3")
	os.WriteFile(audio, []byte("ID3"), 0644)
	os.WriteFile(filepath.Join(dir, "Night Drive.txt"), []byte("[Verse]\n\nHeadlights on the wet road\n  Radio low  \n"), 0644)

	var progress bytes.Buffer
	segs, err := newTestGenerator(&progress).Generate(context.Background(), audio)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []Segment{
		{Text: "[Verse]", StartTime: 0, EndTime: 1.5},
		{Text: "Headlights on the wet road", StartTime: 2, EndTime: 5.5},
		{Text: "Radio low", StartTime: 6, EndTime: 9.5},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segs), len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
	if !strings.Contains(progress.String(), "Processing audio file") {
		t.Errorf("progress = %q", progress.String())
	}
}

func TestGenerator_Placeholder(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "Instrumental.mp3")
	os.WriteFile(audio, []byte("ID3"), 0644)

	segs, err := newTestGenerator(&bytes.Buffer{}).Generate(context.Background(), audio)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(segs) != len(placeholderLines) {
		t.Fatalf("got %d segments, want placeholder", len(segs))
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].StartTime <= segs[i-1].EndTime {
			t.Errorf("segment %d overlaps previous", i)
		}
	}
}

func TestGenerator_MissingAudio(t *testing.T) {
	_, err := newTestGenerator(&bytes.Buffer{}).Generate(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	if err == nil {
		t.Error("expected error for missing audio file")
	}
}

func TestGenerator_Cancelled(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "a.mp3")
	os.WriteFile(audio, []byte("ID3"), 0644)

	g := NewGenerator(&bytes.Buffer{})
	g.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, audio); err == nil {
		t.Error("expected context error")
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []Segment{{Text: "a <b>", StartTime: 0, EndTime: 3}}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != `[{"text":"a <b>","start_time":0,"end_time":3}]`+"\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	Write(&buf, nil)
	var decoded []Segment
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded == nil {
		t.Errorf("nil segments should encode as [], got %q", buf.String())
	}
}
