package dto

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/suno-downloader/internal/model"
)

// SunoTime handles the timestamp formats found in clip JSON.
//
// A value that is not a string or matches no known format leaves the zero
// time instead of failing the whole clip.
type SunoTime struct {
	time.Time
}

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999", // no zone
	"2006-01-02 15:04:05",
}

// UnmarshalJSON parses "2024-05-01T12:34:56.789Z" style timestamps.
func (st *SunoTime) UnmarshalJSON(data []byte) error {
	st.Time = time.Time{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			st.Time = t
			return nil
		}
	}
	return nil
}

// Seconds is a duration in seconds sent either as a number or as a
// numeric string. Anything else decodes to 0.
type Seconds float64

func (sec *Seconds) UnmarshalJSON(data []byte) error {
	*sec = 0

	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		*sec = Seconds(v)
	}
	return nil
}

// JSONClip represents the clip object embedded in song pages and feed responses.
type JSONClip struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	AudioURL      string            `json:"audio_url"`
	ImageURL      string            `json:"image_url"`
	ImageLargeURL string            `json:"image_large_url"`
	DisplayName   string            `json:"display_name"`
	Handle        string            `json:"handle"`
	CreatedAt     *SunoTime         `json:"created_at"`
	IsPublic      bool              `json:"is_public"`
	Metadata      *JSONClipMetadata `json:"metadata"`
}

// JSONClipMetadata holds the generation metadata of a clip.
type JSONClipMetadata struct {
	Prompt   string  `json:"prompt"`
	Lyrics   string  `json:"lyrics"`
	Tags     string  `json:"tags"`
	Duration Seconds `json:"duration"`
	Type     string  `json:"type"`
}

// LyricsText returns the prompt, falling back to the lyrics field.
func (m *JSONClipMetadata) LyricsText() string {
	if m == nil {
		return ""
	}
	if m.Prompt != "" {
		return m.Prompt
	}
	return m.Lyrics
}

// ToTrack converts a JSONClip to a model.Track.
//
// titleFallback is used when the clip has no title; pass "" for the
// model default.
func (jc *JSONClip) ToTrack(titleFallback string) *model.Track {
	title := jc.Title
	if title == "" {
		title = titleFallback
	}

	track := model.NewTrack(jc.ID, title, fixURL(jc.AudioURL), jc.Metadata.LyricsText())

	track.ImageURL = fixURL(jc.ImageLargeURL)
	if track.ImageURL == "" {
		track.ImageURL = fixURL(jc.ImageURL)
	}
	track.DisplayName = jc.DisplayName
	track.Handle = jc.Handle
	if jc.CreatedAt != nil {
		track.CreatedAt = jc.CreatedAt.Time
	}
	if jc.Metadata != nil {
		track.Style = jc.Metadata.Tags
		track.Duration = float64(jc.Metadata.Duration)
	}

	return track
}

// fixURL makes protocol-relative URLs absolute.
func fixURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
