// Package ioutils provides file system utilities for the suno-downloader.
//
// This package contains functions for:
//   - Atomic file writing
//   - Filename sanitization
//   - Existence checks used as the "already processed" signal
//   - Directory creation and home directory expansion
package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// reservedChars are removed from titles before they are used as file names.
const reservedChars = `?:"<>|`

// slashReplacer rewrites both slash variants to a dash.
var slashReplacer = strings.NewReplacer("/", "-", `\`, "-")

// SanitizeFileName turns a user-supplied title into a file name.
//
// Both path separators ("/" and "\") are rewritten to "-", and every
// character in the reserved set ? : " < > | is removed. Nothing else is
// touched: whitespace, dots and unicode pass through unchanged.
//
// The result may be empty (empty input, or input made only of reserved
// characters). Callers that need a non-empty name must supply a fallback.
//
// Example:
//
//	SanitizeFileName(`AC/DC: "Live"?`) // Returns "AC-DC Live"
func SanitizeFileName(name string) string {
	name = slashReplacer.Replace(name)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return -1
		}
		return r
	}, name)
}

// Exists reports whether a file or directory exists at path.
//
// Any stat error other than "not exist" is treated as existing, so a
// permission problem never causes a file to be overwritten.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place. A crash mid-write never leaves a partial file under the
// final name.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := CreateTemp(path)
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	return CommitTemp(tmp, path)
}

// CreateTemp creates a hidden temporary file in the directory of path.
// Pair it with CommitTemp or DiscardTemp.
func CreateTemp(path string) (*os.File, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return os.CreateTemp(dir, "."+base+".*.part")
}

// CommitTemp closes tmp and renames it to path.
func CommitTemp(tmp *os.File, path string) error {
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// DiscardTemp closes and removes tmp.
func DiscardTemp(tmp *os.File) {
	tmp.Close()
	os.Remove(tmp.Name())
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
