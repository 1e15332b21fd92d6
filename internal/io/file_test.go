package ioutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal title", "normal title"},
		{"", ""},
		{"AC/DC", "AC-DC"},
		{`back\slash`, "back-slash"},
		{"what?", "what"},
		{"time: 12:00", "time 1200"},
		{`say "hi"`, "say hi"},
		{"<tag>", "tag"},
		{"a|b", "ab"},
		{`?:"<>|`, ""},
		{`/\`, "--"},
		{"star*stays", "star*stays"},
		{"trailing dots...", "trailing dots..."},
		{"Señor  Café", "Señor  Café"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_NoReservedCharsSurvive(t *testing.T) {
	inputs := []string{
		`a?b:c"d<e>f|g/h\i`,
		strings.Repeat(`?:"<>|/\`, 10),
		"plain",
		"",
	}

	for _, in := range inputs {
		got := SanitizeFileName(in)
		if strings.ContainsAny(got, reservedChars+`/\`) {
			t.Errorf("SanitizeFileName(%q) = %q still contains reserved characters", in, got)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.txt")

	if err := WriteFileAtomic(path, []byte("la la la")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "la la la" {
		t.Errorf("content = %q, want %q", data, "la la la")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the final file in dir, got %d entries", len(entries))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")

	if Exists(path) {
		t.Fatal("Exists() = true before file is created")
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Error("Exists() = false after file is created")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandHome("~/.config/chromium"); got != filepath.Join(home, ".config/chromium") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome() changed absolute path: %q", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("ExpandHome() changed ~user path: %q", got)
	}
}
