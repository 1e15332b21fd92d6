package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/handiism/suno-downloader/internal/audio"
	"github.com/handiism/suno-downloader/internal/browser"
	ioutils "github.com/handiism/suno-downloader/internal/io"
	"github.com/handiism/suno-downloader/internal/mirror"
	"github.com/handiism/suno-downloader/internal/model"
)

//go:embed config.example.toml
var exampleConf []byte

// Settings holds all configuration options.
type Settings struct {
	// Input and output
	URLFile         string `json:"url_file" toml:"url_file" yaml:"url_file"`
	OutputDir       string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	DebugDir        string `json:"debug_dir" toml:"debug_dir" yaml:"debug_dir"`
	DumpFailedPages bool   `json:"dump_failed_pages" toml:"dump_failed_pages" yaml:"dump_failed_pages"`

	// HTTP settings
	UserAgent         string  `json:"user_agent" toml:"user_agent" yaml:"user_agent"`
	RequestTimeout    float64 `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
	MaxRetries        int     `json:"max_retries" toml:"max_retries" yaml:"max_retries"`
	RetryInitialDelay float64 `json:"retry_initial_delay" toml:"retry_initial_delay" yaml:"retry_initial_delay"`
	RequestsPerSecond float64 `json:"requests_per_second" toml:"requests_per_second" yaml:"requests_per_second"`

	// Extraction strategies, tried in order
	Strategies []string `json:"strategies" toml:"strategies" yaml:"strategies"`

	// Browser settings
	BrowserHeadless    bool    `json:"browser_headless" toml:"browser_headless" yaml:"browser_headless"`
	BrowserExecutable  string  `json:"browser_executable" toml:"browser_executable" yaml:"browser_executable"`
	BrowserUserDataDir string  `json:"browser_user_data_dir" toml:"browser_user_data_dir" yaml:"browser_user_data_dir"`
	BrowserStealth     bool    `json:"browser_stealth" toml:"browser_stealth" yaml:"browser_stealth"`
	WaitSelector       string  `json:"wait_selector" toml:"wait_selector" yaml:"wait_selector"`
	NavigationTimeout  float64 `json:"navigation_timeout" toml:"navigation_timeout" yaml:"navigation_timeout"`
	SelectorTimeout    float64 `json:"selector_timeout" toml:"selector_timeout" yaml:"selector_timeout"`
	SettleMin          float64 `json:"settle_min" toml:"settle_min" yaml:"settle_min"`
	SettleMax          float64 `json:"settle_max" toml:"settle_max" yaml:"settle_max"`

	// Library mode
	LibraryURL  string  `json:"library_url" toml:"library_url" yaml:"library_url"`
	FeedMatch   string  `json:"feed_match" toml:"feed_match" yaml:"feed_match"`
	ScrollDelay float64 `json:"scroll_delay" toml:"scroll_delay" yaml:"scroll_delay"`
	MaxScrolls  int     `json:"max_scrolls" toml:"max_scrolls" yaml:"max_scrolls"`

	// Download settings
	MaxConcurrentDownloads int `json:"max_concurrent_downloads" toml:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`

	// Tag settings
	ModifyTags            bool   `json:"modify_tags" toml:"modify_tags" yaml:"modify_tags"`
	AlbumName             string `json:"album_name" toml:"album_name" yaml:"album_name"`
	SaveCoverArtInTags    bool   `json:"save_cover_art_in_tags" toml:"save_cover_art_in_tags" yaml:"save_cover_art_in_tags"`
	CoverArtInTagsResize  bool   `json:"cover_art_in_tags_resize" toml:"cover_art_in_tags_resize" yaml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize int    `json:"cover_art_in_tags_max_size" toml:"cover_art_in_tags_max_size" yaml:"cover_art_in_tags_max_size"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" toml:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" toml:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	PlaylistName   string `json:"playlist_name" toml:"playlist_name" yaml:"playlist_name"`
	M3UExtended    bool   `json:"m3u_extended" toml:"m3u_extended" yaml:"m3u_extended"`

	// S3 mirror, disabled while S3Bucket is empty
	S3Bucket    string `json:"s3_bucket" toml:"s3_bucket" yaml:"s3_bucket"`
	S3Region    string `json:"s3_region" toml:"s3_region" yaml:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint" toml:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key" toml:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key" toml:"s3_secret_key" yaml:"s3_secret_key"`
	S3Prefix    string `json:"s3_prefix" toml:"s3_prefix" yaml:"s3_prefix"`

	// History catalog, disabled while HistoryPath is empty
	HistoryPath string `json:"history_path" toml:"history_path" yaml:"history_path"`

	// Logging: debug, info, warn, error
	LogLevel string `json:"log_level" toml:"log_level" yaml:"log_level"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		URLFile:         "suno_urls.txt",
		OutputDir:       "suno_downloads",
		DebugDir:        ".",
		DumpFailedPages: true,

		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		RequestTimeout:    60,
		MaxRetries:        3,
		RetryInitialDelay: 1,
		RequestsPerSecond: 0,

		Strategies: []string{"script-tag", "next-data", "persona", "is-public"},

		BrowserHeadless:   true,
		WaitSelector:      "h1",
		NavigationTimeout: 60,
		SelectorTimeout:   30,
		SettleMin:         1,
		SettleMax:         3,

		LibraryURL:  "https://suno.com/me",
		FeedMatch:   "/api/feed/",
		ScrollDelay: 3,
		MaxScrolls:  500,

		MaxConcurrentDownloads: 1,

		ModifyTags:            true,
		AlbumName:             "Suno",
		SaveCoverArtInTags:    true,
		CoverArtInTagsResize:  true,
		CoverArtInTagsMaxSize: 1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		PlaylistName:   "suno",
		M3UExtended:    true,

		S3Region: "us-east-1",
		S3Prefix: "suno",

		HistoryPath: filepath.Join(homeDir, ".local", "share", "suno-downloader", "history.db"),

		LogLevel: "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "suno-downloader", "config.toml")
}

// Load reads settings from a file. The format is chosen by extension:
// .toml, .yaml/.yml, anything else is JSON.
//
// Keys missing from the file keep their default values. A missing file
// yields DefaultSettings. Paths starting with "~" are expanded.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(ioutils.ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			settings.expandPaths()
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := unmarshal(path, data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(path), err)
	}

	settings.expandPaths()
	return settings, nil
}

// Save writes settings to a file in the format matching its extension.
func (s *Settings) Save(path string) error {
	path = ioutils.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := marshal(path, s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WriteExample writes a starter config to path: the commented example for
// .toml paths, the default settings in the path's format otherwise.
// It refuses to overwrite an existing file.
func WriteExample(path string) error {
	path = ioutils.ExpandHome(path)
	if ioutils.Exists(path) {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data := exampleConf
	if strings.ToLower(filepath.Ext(path)) != ".toml" {
		var err error
		if data, err = marshal(path, DefaultSettings()); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later in a run.
func (s *Settings) Validate() error {
	var errs []error
	if s.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries must be at least 1, got %d", s.MaxRetries))
	}
	if s.SettleMax < s.SettleMin {
		errs = append(errs, fmt.Errorf("settle_max (%v) is below settle_min (%v)", s.SettleMax, s.SettleMin))
	}
	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls", "wpl", "zpl":
	default:
		errs = append(errs, fmt.Errorf("unknown playlist_format %q", s.PlaylistFormat))
	}
	return errors.Join(errs...)
}

// PlaylistFormatValue returns the configured playlist format.
func (s *Settings) PlaylistFormatValue() model.PlaylistFormat {
	return model.ParsePlaylistFormat(s.PlaylistFormat)
}

// MirrorEnabled reports whether written files are uploaded to S3.
func (s *Settings) MirrorEnabled() bool {
	return s.S3Bucket != ""
}

// ToBrowserOptions converts browser settings to browser.Options.
func (s *Settings) ToBrowserOptions() browser.Options {
	return browser.Options{
		Headless:          s.BrowserHeadless,
		ExecutablePath:    s.BrowserExecutable,
		UserDataDir:       s.BrowserUserDataDir,
		Stealth:           s.BrowserStealth,
		UserAgent:         s.UserAgent,
		WaitSelector:      s.WaitSelector,
		NavigationTimeout: Seconds(s.NavigationTimeout),
		SelectorTimeout:   Seconds(s.SelectorTimeout),
		SettleMin:         Seconds(s.SettleMin),
		SettleMax:         Seconds(s.SettleMax),
	}
}

// ToLibraryOptions converts library settings to browser.LibraryOptions.
func (s *Settings) ToLibraryOptions() browser.LibraryOptions {
	opts := browser.DefaultLibraryOptions()
	opts.URL = s.LibraryURL
	opts.FeedMatch = s.FeedMatch
	opts.ScrollDelay = Seconds(s.ScrollDelay)
	opts.MaxScrolls = s.MaxScrolls
	return opts
}

// ToTagConfig converts tag settings to an audio.TagConfig.
func (s *Settings) ToTagConfig() *audio.TagConfig {
	cfg := audio.DefaultTagConfig()
	cfg.ModifyTags = s.ModifyTags
	cfg.AlbumName = s.AlbumName
	return cfg
}

// ToMirrorConfig converts S3 settings to a mirror.Config.
func (s *Settings) ToMirrorConfig() mirror.Config {
	return mirror.Config{
		Bucket:    s.S3Bucket,
		Region:    s.S3Region,
		Endpoint:  s.S3Endpoint,
		AccessKey: s.S3AccessKey,
		SecretKey: s.S3SecretKey,
		Prefix:    s.S3Prefix,
	}
}

// Seconds converts a seconds value from the config to a time.Duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (s *Settings) expandPaths() {
	s.URLFile = ioutils.ExpandHome(s.URLFile)
	s.OutputDir = ioutils.ExpandHome(s.OutputDir)
	s.DebugDir = ioutils.ExpandHome(s.DebugDir)
	s.BrowserExecutable = ioutils.ExpandHome(s.BrowserExecutable)
	s.BrowserUserDataDir = ioutils.ExpandHome(s.BrowserUserDataDir)
	s.HistoryPath = ioutils.ExpandHome(s.HistoryPath)
}

func unmarshal(path string, data []byte, s *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, s)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, s)
	default:
		return json.Unmarshal(data, s)
	}
}

func marshal(path string, s *Settings) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml":
		return yaml.Marshal(s)
	default:
		return json.MarshalIndent(s, "", "  ")
	}
}
