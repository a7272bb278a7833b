// Package logging routes the process-wide logger to the console, a file,
// or both.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gosniff/internal/config"
)

var debugEnabled bool

// Setup points the standard logger at the configured sinks. The returned
// function closes the log file and is a no-op when file logging is off.
func Setup(cfg config.LoggingConfig) (func(), error) {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = func() { f.Close() }
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	debugEnabled = strings.EqualFold(cfg.Level, "debug")
	return closeFn, nil
}

// Debugf logs only when the configured level is debug.
func Debugf(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("DEBUG "+format, args...)
	}
}
