// Package download provides the orchestration logic that turns song pages
// into files on disk.
//
// # Manager
//
// The Manager coordinates the whole process:
//
//  1. Fetch each song page (plain HTTP or a rendered browser page)
//  2. Extract the clip record with the configured strategies
//  3. Download the audio and write the lyrics next to it
//  4. Tag MP3 files with ID3 metadata and cover art (optional)
//  5. Mirror written files, record the outcome, write a playlist (optional)
//
// A file that already exists is never downloaded or written again, so
// re-running over the same URL list only reports skips.
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	urls, _ := suno.ReadURLList(settings.URLFile)
//	if err := manager.Initialize(ctx, urls); err != nil {
//	    log.Fatal(err)
//	}
//	err = manager.StartDownloads(ctx)
//
// Library mode skips the page fetches and queues the records captured
// by a browser session instead:
//
//	lib := suno.NewLibrary()
//	renderer.CollectLibrary(ctx, session, lib)
//	manager.InitializeFromLibrary(lib)
//
// # Concurrency
//
// Pages are always fetched one after another. Downloads run with at most
// MaxConcurrentDownloads records in flight; the default of 1 processes one
// record completely before the next. Two records whose titles map to the
// same file name are resolved first come, first served: the later one is
// skipped and reported.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// The callback may be called from several goroutines at once.
package download
