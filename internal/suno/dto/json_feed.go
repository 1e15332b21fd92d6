package dto

import (
	"bytes"
	"encoding/json"
)

// DecodeFeed decodes a feed API response body into clips.
//
// The clip list lives under "feed"; older responses use "clips". A body
// that is a bare JSON array is accepted as the list itself. A response
// with neither key decodes to an empty list.
//
// Entries are decoded one by one: an entry that does not decode is left
// out and counted in skipped, the rest of the response is kept.
func DecodeFeed(body []byte) (clips []JSONClip, skipped int, err error) {
	body = bytes.TrimSpace(body)

	raw := body
	if len(body) == 0 || body[0] != '[' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, 0, err
		}

		var ok bool
		raw, ok = envelope["feed"]
		if !ok {
			raw, ok = envelope["clips"]
		}
		if !ok || string(raw) == "null" {
			return nil, 0, nil
		}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 0, err
	}

	clips = make([]JSONClip, 0, len(entries))
	for _, entry := range entries {
		var clip JSONClip
		if err := json.Unmarshal(entry, &clip); err != nil {
			skipped++
			continue
		}
		clips = append(clips, clip)
	}
	return clips, skipped, nil
}
