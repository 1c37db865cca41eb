// Package logging builds the zerolog logger shared by the CLI, the TUI and
// the storage layer.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Options selects where and how verbosely to log.
type Options struct {
	// Level is a zerolog level name. Unknown values fall back to warn.
	Level string
	// File appends JSON lines to the path instead of writing to Writer.
	File string
	// Writer receives human readable output when File is empty. Defaults to
	// stderr.
	Writer io.Writer
}

// New returns a logger plus a close func for any file it opened.
func New(o Options) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	if err != nil || o.Level == "" {
		level = zerolog.WarnLevel
	}

	closer := func() error { return nil }
	var w io.Writer
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		w = zerolog.SyncWriter(f)
		closer = f.Close
	} else {
		out := o.Writer
		if out == nil {
			out = os.Stderr
		}
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}
