package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/suno-downloader/internal/audio"
	"github.com/handiism/suno-downloader/internal/config"
	"github.com/handiism/suno-downloader/internal/history"
	"github.com/handiism/suno-downloader/internal/http"
	ioutils "github.com/handiism/suno-downloader/internal/io"
	"github.com/handiism/suno-downloader/internal/model"
	"github.com/handiism/suno-downloader/internal/suno"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Uploader copies a written file somewhere else, e.g. an S3 bucket.
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

// Recorder stores the outcome of each processed record.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Stats counts the outcomes of one StartDownloads run. A record counts
// once for its audio and once for its lyrics.
type Stats struct {
	Written int
	Skipped int
	Missing int
	Failed  int
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPageSource sets where song pages come from, e.g. BrowserSource.
func WithPageSource(src PageSource) Option {
	return func(m *Manager) {
		m.source = src
	}
}

// WithUploader mirrors every newly written file through u.
func WithUploader(u Uploader) Option {
	return func(m *Manager) {
		m.uploader = u
	}
}

// WithRecorder records every processed record through r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// Manager coordinates song downloads.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	source       PageSource
	parser       *suno.Parser
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService
	uploader     Uploader
	recorder     Recorder

	tracks          []*model.Track
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	// claimed maps an output path to the id of the record that took it in
	// this run.
	claimed map[string]string
	stats   Stats

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	strategies, err := suno.ParseStrategies(settings.Strategies)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		settings:     settings,
		parser:       suno.NewParser(strategies...),
		tagger:       audio.NewTagger(settings.ToTagConfig()),
		playlist:     audio.NewPlaylistCreator(settings.PlaylistFormatValue(), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		httpClient:   newHTTPClient(settings),
		claimed:      make(map[string]string),
		onProgress:   onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.source == nil {
		m.source = HTTPSource(m.httpClient)
	}
	return m, nil
}

// newHTTPClient builds the HTTP client described by the request settings.
func newHTTPClient(settings *config.Settings) *http.Client {
	return http.NewClient(
		http.WithTimeout(config.Seconds(settings.RequestTimeout)),
		http.WithUserAgent(settings.UserAgent),
		http.WithRetry(settings.MaxRetries, config.Seconds(settings.RetryInitialDelay)),
		http.WithRateLimit(settings.RequestsPerSecond),
	)
}

// Initialize fetches and parses every song page in urls, one at a time.
//
// A URL that cannot be fetched or parsed is reported and skipped. Only a
// cancelled context stops the loop early.
func (m *Manager) Initialize(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return suno.ErrNoURLs
	}

	for _, raw := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageURL := suno.CleanURL(raw)
		if pageURL == "" {
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching song page: %s", pageURL), Level: LevelVerbose})

		html, err := m.source.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching %s: %v", pageURL, err), Level: LevelError})
			continue
		}

		ext, err := m.parser.Extract(html)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error parsing %s: %v", pageURL, err), Level: LevelError})
			if errors.Is(err, suno.ErrClipNotFound) && m.settings.DumpFailedPages {
				m.dumpPage(pageURL, html)
			}
			continue
		}

		track := ext.Track
		track.SourceURL = pageURL
		m.addTrack(track)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found song: %s (%s)", track.Title, ext.Strategy), Level: LevelInfo})
	}

	return nil
}

// InitializeFromLibrary queues the records collected by a library session.
func (m *Manager) InitializeFromLibrary(lib *suno.Library) error {
	tracks := lib.Tracks()
	if len(tracks) == 0 {
		return errors.New("library session collected no songs")
	}
	for _, track := range tracks {
		m.addTrack(track)
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d songs in library", len(tracks)), Level: LevelInfo})
	return nil
}

// StartDownloads writes the audio and lyrics of every queued record.
//
// Files that already exist are never downloaded again. At most
// MaxConcurrentDownloads records are processed at the same time.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if err := ioutils.EnsureDir(m.settings.OutputDir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	m.calculateTotals(ctx)

	limit := m.settings.MaxConcurrentDownloads
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	onDisk := make([]bool, len(m.tracks))
	for i, track := range m.tracks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			onDisk[i] = m.processTrack(gctx, track)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist {
		m.writePlaylist(ctx, onDisk)
	}

	stats := m.Stats()
	level := LevelSuccess
	if stats.Failed > 0 {
		level = LevelWarning
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished: %d written, %d skipped, %d missing, %d failed", stats.Written, stats.Skipped, stats.Missing, stats.Failed),
		Level:   level,
	})

	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetTrackNames returns the names of all queued records.
func (m *Manager) GetTrackNames() []string {
	names := make([]string, len(m.tracks))
	for i, track := range m.tracks {
		if artist := track.Artist(); artist != "" {
			names[i] = fmt.Sprintf("%s - %s", artist, track.Title)
		} else {
			names[i] = track.Title
		}
	}
	return names
}

// Tracks returns the queued records.
func (m *Manager) Tracks() []*model.Track {
	return m.tracks
}

// Stats returns the outcome counters of the last run.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) addTrack(track *model.Track) {
	track.ResolvePaths(m.settings.OutputDir)
	m.tracks = append(m.tracks, track)
}

// calculateTotals counts the files this run will produce. Sizes are asked
// for only for audio that is not on disk yet.
func (m *Manager) calculateTotals(ctx context.Context) {
	var files int32
	var bytes int64
	for _, track := range m.tracks {
		if track.HasAudio() {
			files++
			if !ioutils.Exists(track.AudioPath) {
				if size, err := m.httpClient.GetFileSize(ctx, track.AudioURL); err == nil {
					bytes += size
				}
			}
		}
		if track.HasLyrics() {
			files++
		}
	}
	atomic.StoreInt32(&m.totalFiles, files)
	atomic.StoreInt64(&m.totalBytes, bytes)
}

// processTrack handles both files of one record. It reports whether the
// audio file is on disk afterwards.
func (m *Manager) processTrack(ctx context.Context, track *model.Track) bool {
	audioStatus := m.processAudio(ctx, track)
	lyricsStatus := m.processLyrics(ctx, track)

	if m.recorder != nil {
		err := m.recorder.Record(ctx, history.Entry{
			ID:           track.ID,
			Title:        track.Title,
			SourceURL:    track.SourceURL,
			AudioPath:    track.AudioPath,
			LyricsPath:   track.LyricsPath,
			AudioStatus:  audioStatus,
			LyricsStatus: lyricsStatus,
			ProcessedAt:  time.Now(),
		})
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error recording %s in history: %v", track.Title, err), Level: LevelWarning})
		}
	}

	return audioStatus == history.StatusWritten || audioStatus == history.StatusSkipped
}

func (m *Manager) processAudio(ctx context.Context, track *model.Track) history.Status {
	if !track.HasAudio() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Audio missing for %s: %v", track.Title, suno.ErrAudioMissing), Level: LevelWarning})
		m.count(history.StatusMissing)
		return history.StatusMissing
	}

	if !m.claim(track, track.AudioPath) {
		atomic.AddInt32(&m.downloadedFiles, 1)
		m.count(history.StatusSkipped)
		return history.StatusSkipped
	}

	var last int64
	err := m.httpClient.DownloadFile(ctx, track.AudioURL, track.AudioPath, func(written, _ int64) {
		// A retried attempt starts again from zero.
		if written < last {
			last = 0
		}
		atomic.AddInt64(&m.receivedBytes, written-last)
		last = written
	})
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.Title, err), Level: LevelError})
		m.count(history.StatusFailed)
		return history.StatusFailed
	}
	atomic.AddInt32(&m.downloadedFiles, 1)

	if m.settings.ModifyTags || m.settings.SaveCoverArtInTags {
		var artwork []byte
		if m.settings.SaveCoverArtInTags && track.HasArtwork() {
			artwork = m.downloadArtwork(ctx, track)
		}
		if err := m.tagger.SaveTags(track, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", track.Title, err), Level: LevelWarning})
		}
	}

	m.mirror(ctx, track.AudioPath)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(track.AudioPath)), Level: LevelSuccess})
	m.count(history.StatusWritten)
	return history.StatusWritten
}

func (m *Manager) processLyrics(ctx context.Context, track *model.Track) history.Status {
	if !track.HasLyrics() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No lyrics for %s", track.Title), Level: LevelInfo})
		m.count(history.StatusMissing)
		return history.StatusMissing
	}

	if !m.claim(track, track.LyricsPath) {
		atomic.AddInt32(&m.downloadedFiles, 1)
		m.count(history.StatusSkipped)
		return history.StatusSkipped
	}

	if err := ioutils.WriteFileAtomic(track.LyricsPath, []byte(track.Lyrics)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing lyrics for %s: %v", track.Title, err), Level: LevelError})
		m.count(history.StatusFailed)
		return history.StatusFailed
	}
	atomic.AddInt32(&m.downloadedFiles, 1)

	m.mirror(ctx, track.LyricsPath)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved lyrics: %s", filepath.Base(track.LyricsPath)), Level: LevelSuccess})
	m.count(history.StatusWritten)
	return history.StatusWritten
}

// claim reserves path for track. It returns false, after reporting the
// skip, when the file already exists or another record of this run took
// the name first.
func (m *Manager) claim(track *model.Track, path string) bool {
	m.mu.Lock()
	owner, taken := m.claimed[path]
	if !taken {
		m.claimed[path] = track.ID
	}
	m.mu.Unlock()

	name := filepath.Base(path)
	switch {
	case taken && owner != track.ID:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: name already used by song %s", name, owner), Level: LevelWarning})
		return false
	case taken, ioutils.Exists(path):
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", name), Level: LevelInfo})
		return false
	}
	return true
}

func (m *Manager) downloadArtwork(ctx context.Context, track *model.Track) []byte {
	data, err := m.httpClient.DownloadBytes(ctx, track.ImageURL)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", track.Title, err), Level: LevelWarning})
		return nil
	}

	maxSize := 0
	if m.settings.CoverArtInTagsResize {
		maxSize = m.settings.CoverArtInTagsMaxSize
	}
	artwork, err := m.imageService.PrepareArtwork(ctx, data, maxSize)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error converting artwork for %s: %v", track.Title, err), Level: LevelWarning})
		return nil
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded artwork for %s", track.Title), Level: LevelVerbose})
	return artwork
}

func (m *Manager) writePlaylist(ctx context.Context, onDisk []bool) {
	var tracks []*model.Track
	for i, track := range m.tracks {
		if onDisk[i] {
			tracks = append(tracks, track)
		}
	}
	if len(tracks) == 0 {
		return
	}

	pl := model.NewPlaylist(m.settings.PlaylistName, m.settings.OutputDir, m.playlist.Format(), tracks)
	if err := m.playlist.WritePlaylist(pl); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.mirror(ctx, pl.Path)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s (%d songs)", filepath.Base(pl.Path), len(tracks)), Level: LevelSuccess})
}

func (m *Manager) mirror(ctx context.Context, path string) {
	if m.uploader == nil {
		return
	}
	key, err := m.uploader.UploadFile(ctx, path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error mirroring %s: %v", filepath.Base(path), err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Mirrored %s to %s", filepath.Base(path), key), Level: LevelVerbose})
}

// dumpPage saves a page no strategy could parse as
// <debug dir>/debug_FAIL_<song id>.html.
func (m *Manager) dumpPage(pageURL, html string) {
	id := ioutils.SanitizeFileName(suno.SongIDFromURL(pageURL))
	if id == "" {
		id = "unknown"
	}
	path := filepath.Join(m.settings.DebugDir, "debug_FAIL_"+id+".html")

	if err := os.MkdirAll(m.settings.DebugDir, 0755); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving debug page: %v", err), Level: LevelWarning})
		return
	}
	if err := ioutils.WriteFileAtomic(path, []byte(html)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving debug page: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved page for inspection: %s", path), Level: LevelInfo})
}

func (m *Manager) count(status history.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch status {
	case history.StatusWritten:
		m.stats.Written++
	case history.StatusSkipped:
		m.stats.Skipped++
	case history.StatusMissing:
		m.stats.Missing++
	case history.StatusFailed:
		m.stats.Failed++
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
