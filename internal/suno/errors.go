package suno

import "errors"

var (
	// ErrClipNotFound is returned when no extraction strategy finds the clip
	// JSON in a page. Usually the site markup changed.
	ErrClipNotFound = errors.New("clip data not found in page")

	// ErrDecode wraps JSON decode failures of an extracted fragment or a
	// feed response body.
	ErrDecode = errors.New("could not decode clip data")

	// ErrAudioMissing marks a record without an audio reference.
	ErrAudioMissing = errors.New("audio URL not found in clip data")

	// ErrNoURLs is returned when a URL list contains no usable entries.
	ErrNoURLs = errors.New("no URLs to process")
)
