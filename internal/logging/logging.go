// Package logging builds the charmbracelet loggers used by the commands.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger creates a new [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr]. level is parsed with [ParseLevel].
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, Level: ParseLevel(level)}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the key-value pairs added to all entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// ParseLevel maps a config level name to a [log.Level]. Unknown names give info.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
