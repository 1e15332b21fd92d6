package suno

import (
	"sync"

	"github.com/handiism/suno-downloader/internal/model"
)

// Library accumulates tracks seen in feed responses, keyed by clip ID.
//
// A later record for the same ID replaces the earlier one but keeps its
// position, so Tracks returns records in first-seen order. Library is safe
// for concurrent use; browser response callbacks run on their own goroutine.
type Library struct {
	mu    sync.Mutex
	order []string
	byID  map[string]*model.Track
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{byID: make(map[string]*model.Track)}
}

// Add stores tracks and returns how many IDs were not seen before.
func (l *Library) Add(tracks ...*model.Track) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	added := 0
	for _, t := range tracks {
		if t == nil || t.ID == "" {
			continue
		}
		if _, ok := l.byID[t.ID]; !ok {
			l.order = append(l.order, t.ID)
			added++
		}
		l.byID[t.ID] = t
	}
	return added
}

// AddFeed parses a feed response body and adds its tracks. It returns how
// many IDs were new and how many entries could not be decoded.
func (l *Library) AddFeed(body []byte) (added, skipped int, err error) {
	tracks, skipped, err := ParseFeed(body)
	if err != nil {
		return 0, 0, err
	}
	return l.Add(tracks...), skipped, nil
}

// Get returns the current record for id.
func (l *Library) Get(id string) (*model.Track, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.byID[id]
	return t, ok
}

// Len returns the number of distinct IDs.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Tracks returns a snapshot of all records in first-seen order.
func (l *Library) Tracks() []*model.Track {
	l.mu.Lock()
	defer l.mu.Unlock()

	tracks := make([]*model.Track, 0, len(l.order))
	for _, id := range l.order {
		tracks = append(tracks, l.byID[id])
	}
	return tracks
}
