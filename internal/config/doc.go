// Package config provides configuration management for suno-downloader.
//
// This package handles:
//   - Loading and saving settings as TOML, YAML or JSON
//   - Default configuration values
//   - The commented example config written by "suno-dl config init"
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Reads suno_urls.txt, writes to suno_downloads/
//	// Songs processed one at a time
//	// ID3 tagging enabled
//
// # Loading from File
//
// The format follows the file extension. Keys missing from the file keep
// their defaults, and a missing file is not an error:
//
//	settings, err := config.Load("~/.config/suno-downloader/config.toml")
//
// # Saving Settings
//
//	settings.OutputDir = "/music/suno"
//	err := settings.Save("/path/to/config.yaml")
//
// # Configuration Options
//
// Settings includes options for:
//   - Input list, output and debug directories
//   - HTTP timeouts, retries and pacing
//   - Extraction strategy order
//   - Browser launch, waits and library scrolling
//   - Cover art, ID3 tags and playlists
//   - S3 mirror and history catalog
package config
