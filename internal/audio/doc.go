// Package audio provides audio file services: ID3 tag writing, playlist
// generation and reading back files already on disk.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(track, artworkBytes)
//
// The tagger supports:
//   - Artist (creator display name), Album, Title
//   - Year and date from the clip creation time
//   - Genre from the style tags
//   - Lyrics and the song page URL as a comment
//   - Cover Art (embedded in MP3)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	err := creator.WritePlaylist(playlist)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
//
// # Scanning
//
// Scanner reads tags and durations of MP3 files in a directory, so
// playlists can be rebuilt for songs downloaded by earlier runs.
package audio
