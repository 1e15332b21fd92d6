package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OutputDir != "suno_downloads" || s.URLFile != "suno_urls.txt" {
		t.Errorf("got output=%q urls=%q, want defaults", s.OutputDir, s.URLFile)
	}
	if s.MaxConcurrentDownloads != 1 {
		t.Errorf("MaxConcurrentDownloads = %d, want 1", s.MaxConcurrentDownloads)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "toml",
			file: "config.toml",
			body: "output_dir = \"/music/suno\"\nmax_concurrent_downloads = 4\nstrategies = [\"is-public\"]\n",
		},
		{
			name: "yaml",
			file: "config.yaml",
			body: "output_dir: /music/suno\nmax_concurrent_downloads: 4\nstrategies:\n  - is-public\n",
		},
		{
			name: "json",
			file: "config.json",
			body: `{"output_dir": "/music/suno", "max_concurrent_downloads": 4, "strategies": ["is-public"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.OutputDir != "/music/suno" {
				t.Errorf("OutputDir = %q", s.OutputDir)
			}
			if s.MaxConcurrentDownloads != 4 {
				t.Errorf("MaxConcurrentDownloads = %d", s.MaxConcurrentDownloads)
			}
			if !reflect.DeepEqual(s.Strategies, []string{"is-public"}) {
				t.Errorf("Strategies = %v", s.Strategies)
			}
			// untouched keys keep defaults
			if s.WaitSelector != "h1" || s.LibraryURL != "https://suno.com/me" {
				t.Errorf("defaults lost: selector=%q library=%q", s.WaitSelector, s.LibraryURL)
			}
		})
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	path := filepath.Join(t.TempDir(), "config.yml")
	os.WriteFile(path, []byte("browser_user_data_dir: ~/.config/chromium\n"), 0644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".config", "chromium"); s.BrowserUserDataDir != want {
		t.Errorf("BrowserUserDataDir = %q, want %q", s.BrowserUserDataDir, want)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("output_dir = [unterminated"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)

			want := DefaultSettings()
			want.OutputDir = "/srv/suno"
			want.CreatePlaylist = true
			want.PlaylistFormat = "pls"
			if err := want.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.OutputDir != want.OutputDir || !got.CreatePlaylist || got.PlaylistFormat != "pls" {
				t.Errorf("round trip lost values: %+v", got)
			}
		})
	}
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteExample(path); err != nil {
				t.Fatalf("WriteExample: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load example: %v", err)
			}

			want := DefaultSettings()
			want.expandPaths()
			if !reflect.DeepEqual(got, want) {
				t.Errorf("example config differs from defaults:\n got %+v\nwant %+v", got, want)
			}

			if err := WriteExample(path); err == nil || !strings.Contains(err.Error(), "already exists") {
				t.Errorf("second WriteExample should refuse to overwrite, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	s := DefaultSettings()
	s.MaxConcurrentDownloads = 0
	s.PlaylistFormat = "xspf"
	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"max_concurrent_downloads", "playlist_format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSettings_Conversions(t *testing.T) {
	s := DefaultSettings()
	s.NavigationTimeout = 45
	s.SettleMin = 0.5
	s.BrowserStealth = true
	s.ScrollDelay = 2
	s.MaxScrolls = 10
	s.S3Bucket = "music"
	s.ModifyTags = false

	bo := s.ToBrowserOptions()
	if bo.NavigationTimeout != 45*time.Second || bo.SettleMin != 500*time.Millisecond || !bo.Stealth {
		t.Errorf("browser options = %+v", bo)
	}
	if bo.WaitSelector != "h1" {
		t.Errorf("WaitSelector = %q", bo.WaitSelector)
	}

	lo := s.ToLibraryOptions()
	if lo.ScrollDelay != 2*time.Second || lo.MaxScrolls != 10 || lo.FeedMatch != "/api/feed/" {
		t.Errorf("library options = %+v", lo)
	}

	if mc := s.ToMirrorConfig(); mc.Bucket != "music" || mc.Prefix != "suno" {
		t.Errorf("mirror config = %+v", mc)
	}
	if !s.MirrorEnabled() {
		t.Error("mirror should be enabled with a bucket")
	}

	if tc := s.ToTagConfig(); tc.ModifyTags || tc.AlbumName != "Suno" {
		t.Errorf("tag config = %+v", tc)
	}
}
