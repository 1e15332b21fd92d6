package suno

import (
	"fmt"

	"github.com/handiism/suno-downloader/internal/model"
	"github.com/handiism/suno-downloader/internal/suno/dto"
)

// ParseFeed decodes a feed API response body into tracks.
//
// Clips without an identifier are dropped since the library is keyed by it.
// A clip without a title gets "untitled_<id>". Entries that do not decode
// are counted in skipped; only a body that is not a feed at all is an error.
func ParseFeed(body []byte) (tracks []*model.Track, skipped int, err error) {
	clips, skipped, err := dto.DecodeFeed(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: feed response: %v", ErrDecode, err)
	}

	tracks = make([]*model.Track, 0, len(clips))
	for i := range clips {
		clip := &clips[i]
		if clip.ID == "" {
			continue
		}
		tracks = append(tracks, clip.ToTrack(model.DefaultTitle+"_"+clip.ID))
	}
	return tracks, skipped, nil
}
