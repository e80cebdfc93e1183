// Package logging configures the global zerolog logger for the console.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup makes the global logger write human-readable lines to stderr,
// colored when stderr is a terminal. Debug messages are kept only when verbose.
func Setup(verbose bool) {
	log.Logger = New(os.Stderr, verbose)
}

// New returns a console logger writing to w.
func New(w io.Writer, verbose bool) zerolog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		noColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
		if !noColor && f == os.Stderr {
			w = colorable.NewColorableStderr()
		}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
