// Package model defines the core data structures used throughout
// the suno-downloader application.
//
// # Track
//
// Track is the transient record extracted from one song page or one feed
// entry: identifier, title, audio reference and lyrics, plus the metadata
// used for tagging. Its two derived outputs are named after the sanitized
// title:
//
//	track := model.NewTrack(id, "Night Drive", audioURL, lyrics)
//	track.ResolvePaths("/music/suno")
//	fmt.Println(track.AudioPath)  // /music/suno/Night Drive.mp3
//	fmt.Println(track.LyricsPath) // /music/suno/Night Drive.txt
//
// # Playlist
//
// Playlist groups tracks for playlist file generation:
//
//	pl := model.NewPlaylist("suno", "/music/suno", model.PlaylistFormatM3U, tracks)
//	fmt.Println(pl.Path) // /music/suno/suno.m3u
package model
