// Package suno extracts song records from Suno pages and feed responses.
//
// The package handles two inputs:
//
//  1. Song pages (plain HTTP or browser-rendered HTML) holding one embedded clip
//  2. Feed API responses holding a list of clips, seen while browsing the library
//
// # Song Page Parsing
//
// The clip JSON is not exposed through a stable API. The Parser tries a list of
// strategies in order until one yields a clip that decodes:
//
//	parser := suno.NewParser() // script-tag, next-data, persona, is-public
//	track, err := parser.ParseSongPage(html)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s (%s)\n", track.Title, track.AudioURL)
//
// # Library Accumulation
//
// Feed responses are decoded with ParseFeed and collected in a Library, keyed
// by clip ID. A later response for the same ID replaces the earlier record:
//
//	lib := suno.NewLibrary()
//	added, skipped, err := lib.AddFeed(body)
//
// # URL Lists
//
// ReadURLList reads one URL per line, skipping blanks and '#' comments, and
// strips query strings:
//
//	urls, err := suno.ReadURLList("suno_urls.txt")
package suno
