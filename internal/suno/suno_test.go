package suno

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const scriptTagPage = `<html><head>
<script>var x = 1;</script>
<script>window.data = {"clip":{"id":"abc","title":"Night Drive","audio_url":"https://cdn1.suno.ai/abc.mp3","image_large_url":"https://cdn2.suno.ai/abc.jpeg","display_name":"Night Owl","metadata":{"prompt":"[Verse]\nheadlights","tags":"synthwave"}},"persona":null};</script>
</head><body><h1>Night Drive</h1></body></html>`

const nextDataPage = `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"clip":{"id":"n1","title":"Next","audio_url":"https://cdn1.suno.ai/n1.mp3","metadata":{"lyrics":"from lyrics field"}}}}}</script>
</body></html>`

const personaPage = `<html><body>{"clip":{"id":"p1","title":"Raw","audio_url":"https://cdn1.suno.ai/p1.mp3"},"persona":{"id":"z"}}</body></html>`

const isPublicPage = `<html><body>"clip":{"id":"v1",
"title":"Video Song",
"video_url":"https://cdn1.suno.ai/v1.mp4","is_public":true}</body></html>`

func TestParser_ParseSongPage(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantStrategy Strategy
		wantID       string
		wantTitle    string
		wantAudio    string
		wantLyrics   string
	}{
		{
			name:         "script tag with persona boundary",
			html:         scriptTagPage,
			wantStrategy: StrategyScriptTag,
			wantID:       "abc",
			wantTitle:    "Night Drive",
			wantAudio:    "https://cdn1.suno.ai/abc.mp3",
			wantLyrics:   "[Verse]\nheadlights",
		},
		{
			name:         "next data path",
			html:         nextDataPage,
			wantStrategy: StrategyNextData,
			wantID:       "n1",
			wantTitle:    "Next",
			wantAudio:    "https://cdn1.suno.ai/n1.mp3",
			wantLyrics:   "from lyrics field",
		},
		{
			name:         "raw persona boundary",
			html:         personaPage,
			wantStrategy: StrategyPersona,
			wantID:       "p1",
			wantTitle:    "Raw",
			wantAudio:    "https://cdn1.suno.ai/p1.mp3",
		},
		{
			name:         "is_public boundary across lines",
			html:         isPublicPage,
			wantStrategy: StrategyIsPublic,
			wantID:       "v1",
			wantTitle:    "Video Song",
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := parser.Extract(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ext.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %q, want %q", ext.Strategy, tt.wantStrategy)
			}
			tr := ext.Track
			if tr.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", tr.ID, tt.wantID)
			}
			if tr.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tr.Title, tt.wantTitle)
			}
			if tr.AudioURL != tt.wantAudio {
				t.Errorf("AudioURL = %q, want %q", tr.AudioURL, tt.wantAudio)
			}
			if tr.Lyrics != tt.wantLyrics {
				t.Errorf("Lyrics = %q, want %q", tr.Lyrics, tt.wantLyrics)
			}
		})
	}
}

func TestParser_ScriptTagMetadata(t *testing.T) {
	track, err := NewParser().ParseSongPage(scriptTagPage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.DisplayName != "Night Owl" {
		t.Errorf("DisplayName = %q", track.DisplayName)
	}
	if track.ImageURL != "https://cdn2.suno.ai/abc.jpeg" {
		t.Errorf("ImageURL = %q", track.ImageURL)
	}
	if track.Style != "synthwave" {
		t.Errorf("Style = %q", track.Style)
	}
}

func TestParser_LenientMetadata(t *testing.T) {
	html := `<html><body>{"clip":{"id":"t1","title":"Odd Fields","audio_url":"https://cdn1.suno.ai/t1.mp3",` +
		`"created_at":"2024-05-01T12:34:56.789+0000","metadata":{"prompt":"la la","duration":"183.2"}},"persona":null}</body></html>`

	track, err := NewParser(StrategyPersona).ParseSongPage(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Duration != 183.2 {
		t.Errorf("Duration = %v, want 183.2", track.Duration)
	}
	if track.CreatedAt.IsZero() || track.CreatedAt.UTC().Hour() != 12 {
		t.Errorf("CreatedAt = %v", track.CreatedAt)
	}

	html = `<html><body>{"clip":{"id":"t2","title":"Bad Date","audio_url":"https://cdn1.suno.ai/t2.mp3",` +
		`"created_at":"last tuesday","metadata":{"duration":null}},"persona":null}</body></html>`
	track, err = NewParser(StrategyPersona).ParseSongPage(html)
	if err != nil {
		t.Fatalf("unparseable optional fields must not reject the clip: %v", err)
	}
	if !track.CreatedAt.IsZero() || track.Duration != 0 {
		t.Errorf("CreatedAt = %v Duration = %v, want zero values", track.CreatedAt, track.Duration)
	}
}

func TestParser_NotFound(t *testing.T) {
	_, err := NewParser().ParseSongPage(`<html><body><h1>Private song</h1></body></html>`)
	if !errors.Is(err, ErrClipNotFound) {
		t.Fatalf("err = %v, want ErrClipNotFound", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Error("no fragment was found, ErrDecode should not be reported")
	}
}

func TestParser_DecodeFailure(t *testing.T) {
	html := `<html><body>"clip":{not json},"persona"</body></html>`

	_, err := NewParser().ParseSongPage(html)
	if !errors.Is(err, ErrClipNotFound) {
		t.Errorf("err = %v, want ErrClipNotFound", err)
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestParser_StrategySubset(t *testing.T) {
	parser := NewParser(StrategyIsPublic)
	if _, err := parser.ParseSongPage(personaPage); !errors.Is(err, ErrClipNotFound) {
		t.Errorf("is-public only parser should not match persona page, err = %v", err)
	}
	if _, err := parser.ParseSongPage(isPublicPage); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseStrategies(t *testing.T) {
	got, err := ParseStrategies([]string{" Persona ", "next-data"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Strategy{StrategyPersona, StrategyNextData}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ParseStrategies([]string{"xpath"}); err == nil {
		t.Error("expected error for unknown strategy")
	}

	got, _ = ParseStrategies(nil)
	if !reflect.DeepEqual(got, DefaultStrategies) {
		t.Errorf("empty list = %v, want defaults", got)
	}
}

func TestParseFeed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIDs   []string
		wantTitle   string
		wantSkipped int
		wantErr     bool
	}{
		{
			name:      "feed key",
			body:      `{"feed":[{"id":"a","title":"A"},{"id":"b"},{"title":"no id"}]}`,
			wantIDs:   []string{"a", "b"},
			wantTitle: "untitled_b",
		},
		{
			name:    "clips fallback",
			body:    `{"clips":[{"id":"c","title":"C"}]}`,
			wantIDs: []string{"c"},
		},
		{
			name:    "bare array",
			body:    `[{"id":"d","title":"D"}]`,
			wantIDs: []string{"d"},
		},
		{
			name:    "neither key",
			body:    `{"num_total_results":0}`,
			wantIDs: []string{},
		},
		{
			name:        "bad entry does not drop the rest",
			body:        `{"feed":[{"id":"a","title":"A"},{"id":"x","title":7},{"id":"b","metadata":{"duration":"183.2"}}]}`,
			wantIDs:     []string{"a", "b"},
			wantTitle:   "untitled_b",
			wantSkipped: 1,
		},
		{
			name:    "not json",
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, skipped, err := ParseFeed([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrDecode) {
					t.Errorf("err = %v, want ErrDecode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			ids := make([]string, 0, len(tracks))
			for _, tr := range tracks {
				ids = append(ids, tr.ID)
			}
			if skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tt.wantSkipped)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if tt.wantTitle != "" && tracks[len(tracks)-1].Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tracks[len(tracks)-1].Title, tt.wantTitle)
			}
		})
	}
}

func TestLibrary_SameIDKeepsMostRecent(t *testing.T) {
	lib := NewLibrary()

	n, _, err := lib.AddFeed([]byte(`{"feed":[{"id":"a","title":"Old"},{"id":"b","title":"B"}]}`))
	if err != nil || n != 2 {
		t.Fatalf("first feed: n=%d err=%v", n, err)
	}

	n, _, err = lib.AddFeed([]byte(`{"feed":[{"id":"c","title":"C"},{"id":"a","title":"New"}]}`))
	if err != nil || n != 1 {
		t.Fatalf("second feed: n=%d err=%v", n, err)
	}

	if lib.Len() != 3 {
		t.Errorf("Len() = %d, want 3", lib.Len())
	}

	a, ok := lib.Get("a")
	if !ok || a.Title != "New" {
		t.Errorf("record a = %+v, want title New", a)
	}

	var order []string
	for _, tr := range lib.Tracks() {
		order = append(order, tr.ID)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLibrary_AddIgnoresEmpty(t *testing.T) {
	lib := NewLibrary()
	if n := lib.Add(nil); n != 0 || lib.Len() != 0 {
		t.Errorf("Add(nil) stored something: n=%d len=%d", n, lib.Len())
	}
}

func TestParseURLList(t *testing.T) {
	input := `
# favourites
https://suno.com/song/abc?sh=share123

   https://suno.com/song/def   
https://suno.com/song/ghi#top
`
	urls, err := ParseURLList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"https://suno.com/song/abc",
		"https://suno.com/song/def",
		"https://suno.com/song/ghi",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("got %v, want %v", urls, want)
	}
}

func TestReadURLList(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadURLList(filepath.Join(dir, "missing.txt")); err == nil ||
		!strings.Contains(err.Error(), "missing.txt") {
		t.Errorf("missing file error should name the file, got %v", err)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadURLList(empty); !errors.Is(err, ErrNoURLs) {
		t.Errorf("err = %v, want ErrNoURLs", err)
	}

	list := filepath.Join(dir, "suno_urls.txt")
	if err := os.WriteFile(list, []byte("https://suno.com/song/x?a=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	urls, err := ReadURLList(list)
	if err != nil || len(urls) != 1 || urls[0] != "https://suno.com/song/x" {
		t.Errorf("urls = %v, err = %v", urls, err)
	}
}

func TestSongIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://suno.com/song/7cce556d-1b2c", "7cce556d-1b2c"},
		{"https://suno.com/song/abc/?sh=1", "abc"},
		{"https://suno.com", ""},
		{"https://suno.com/", ""},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		if got := SongIDFromURL(tt.url); got != tt.want {
			t.Errorf("SongIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
