// Package history keeps a SQLite catalog of the songs processed by past runs.
//
// The catalog is informational: whether a song is skipped is decided by the
// files in the output directory, never by the catalog.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for unknown song IDs.
var ErrNotFound = errors.New("song not in history")

// Status is the outcome for one of the two files of a song.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped" // file already existed
	StatusMissing Status = "missing" // no audio URL or no lyrics
	StatusFailed  Status = "failed"
)

// Entry is one processed song.
type Entry struct {
	ID           string
	Title        string
	SourceURL    string
	AudioPath    string
	LyricsPath   string
	AudioStatus  Status
	LyricsStatus Status
	ProcessedAt  time.Time
}

// Store is the SQLite-backed catalog.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS songs (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		source_url    TEXT,
		audio_path    TEXT,
		lyrics_path   TEXT,
		audio_status  TEXT NOT NULL,
		lyrics_status TEXT NOT NULL,
		processed_at  TEXT NOT NULL
	)`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or replaces the entry for e.ID. A zero ProcessedAt is set
// to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("history: entry without id")
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO songs
		(id, title, source_url, audio_path, lyrics_path, audio_status, lyrics_status, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			audio_path = excluded.audio_path,
			lyrics_path = excluded.lyrics_path,
			audio_status = excluded.audio_status,
			lyrics_status = excluded.lyrics_status,
			processed_at = excluded.processed_at`,
		e.ID, e.Title, e.SourceURL, e.AudioPath, e.LyricsPath,
		string(e.AudioStatus), string(e.LyricsStatus), e.ProcessedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("history: record %s: %w", e.ID, err)
	}
	return nil
}

// Get returns the entry for id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, source_url, audio_path, lyrics_path,
		audio_status, lyrics_status, processed_at FROM songs WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// List returns the most recently processed entries first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, title, source_url, audio_path, lyrics_path,
		audio_status, lyrics_status, processed_at FROM songs
		ORDER BY processed_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e                      Entry
		sourceURL, audio, lyr  sql.NullString
		audioStatus, lyrStatus string
		processedAt            string
	)
	if err := sc.Scan(&e.ID, &e.Title, &sourceURL, &audio, &lyr, &audioStatus, &lyrStatus, &processedAt); err != nil {
		return nil, err
	}
	e.SourceURL = sourceURL.String
	e.AudioPath = audio.String
	e.LyricsPath = lyr.String
	e.AudioStatus = Status(audioStatus)
	e.LyricsStatus = Status(lyrStatus)
	e.ProcessedAt, _ = time.Parse(timeLayout, processedAt)
	return &e, nil
}
