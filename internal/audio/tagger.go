package audio

import (
	"github.com/bogem/id3v2"

	"github.com/handiism/suno-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the clip.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    AlbumName:  "Suno",
//	    Artist:     TagModify,      // creator display name
//	    TrackTitle: TagModify,      // clip title
//	    Genre:      TagModify,      // style tags the song was generated with
//	    Lyrics:     TagModify,      // prompt/lyrics text
//	    Comments:   TagDoNotModify, // keep existing comments
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// AlbumName is written to TALB; Suno songs have no album of their own.
	AlbumName string

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Genre controls the TCON (Content type) frame.
	Genre TagEditAction

	// Lyrics controls the USLT (Unsynchronized lyrics) frame.
	Lyrics TagEditAction

	// Comments controls the COMM frame, which holds the song page URL.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// All tags are set to TagModify and the album is "Suno".
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		AlbumName:  "Suno",
		Artist:     TagModify,
		Album:      TagModify,
		Year:       TagModify,
		Date:       TagModify,
		TrackTitle: TagModify,
		Genre:      TagModify,
		Lyrics:     TagModify,
		Comments:   TagModify,
	}
}

// Tagger writes ID3 tags to downloaded MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading the audio
//	err := tagger.SaveTags(track, artworkBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", track.AudioPath, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the track's MP3 file at track.AudioPath.
//
// Parameters:
//   - track: The track being tagged (title, artist, lyrics, file path)
//   - artwork: JPEG image bytes for cover art (nil to skip artwork)
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(track *model.Track, artwork []byte) error {
	tag, err := id3v2.Open(track.AudioPath, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *model.Track) {
	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(track.Artist())
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(t.config.AlbumName)
	}

	// Year (TYER) and Date (TDRC) come from the clip creation time
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if !track.CreatedAt.IsZero() {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, track.CreatedAt.Format("2006"))
		}
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if !track.CreatedAt.IsZero() {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, track.CreatedAt.Format("2006-01-02"))
		}
	}

	// Track Title (TIT2)
	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(track.Title)
	}

	// Genre (TCON)
	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		if track.Style != "" {
			tag.SetGenre(track.Style)
		}
	}

	// Lyrics (USLT)
	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	case TagModify:
		if track.HasLyrics() {
			tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          "eng",
				ContentDescriptor: "",
				Lyrics:            track.Lyrics,
			})
		}
	}

	// Comments (COMM)
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if track.SourceURL != "" {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        track.SourceURL,
			})
		}
	}
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
