// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization of song titles
//   - Atomic writes (temp file + rename)
//   - Directory creation and "~" expansion
//   - Cover art resizing and format conversion
//
// # Filename Sanitization
//
// SanitizeFileName rewrites both slash variants to a dash and strips the
// reserved characters ? : " < > |.
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song Part 1-2"
//
// # Atomic Writes
//
//	err := ioutils.WriteFileAtomic("/music/Song.txt", []byte(lyrics))
//
// Streaming writers use CreateTemp and CommitTemp directly so that only
// complete files ever appear under their final name. File existence is the
// "already processed" signal, so a half-written file must never be visible.
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
