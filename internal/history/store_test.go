package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Title: "Night Drive", AudioStatus: StatusWritten, LyricsStatus: StatusWritten, ProcessedAt: base},
		{ID: "b", Title: "Instrumental", AudioStatus: StatusWritten, LyricsStatus: StatusMissing, ProcessedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s): %v", e.ID, err)
		}
	}

	// second run: files exist now
	if err := s.Record(ctx, Entry{ID: "a", Title: "Night Drive", AudioStatus: StatusSkipped, LyricsStatus: StatusSkipped, ProcessedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].AudioStatus != StatusSkipped {
		t.Errorf("most recent entry = %+v", got[0])
	}
	if !got[0].ProcessedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("ProcessedAt = %v", got[0].ProcessedAt)
	}

	limited, err := s.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %d entries, err %v", len(limited), err)
	}
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Record(ctx, Entry{ID: "a", Title: "A", SourceURL: "https://suno.com/song/a", AudioStatus: StatusFailed, LyricsStatus: StatusWritten}); err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.SourceURL != "https://suno.com/song/a" || e.AudioStatus != StatusFailed {
		t.Errorf("entry = %+v", e)
	}
	if e.ProcessedAt.IsZero() {
		t.Error("ProcessedAt should default to now")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_RecordWithoutID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Record(context.Background(), Entry{Title: "x"}); err == nil {
		t.Error("expected error for entry without id")
	}
}
