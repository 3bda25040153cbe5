// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable output.
// When stderr is piped or redirected, uses slog.JSONHandler for
// machine-parseable output.
//
// Do not use it while a session is running: the terminal belongs to the
// worker then. Use [NewSessionLogger] instead.
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// SessionLogOptions configures [NewSessionLogger].
type SessionLogOptions struct {
	// File is appended to. Empty discards all records.
	File string

	// Level is debug, info, warn or error.
	Level string

	// Format is "json" or "text".
	Format string
}

// NewSessionLogger creates the logger used while a session is running.
// Records go to a file because stdout and stderr carry the worker's
// output. The returned close function flushes and closes the file; it
// is a no-op when logging is discarded.
func NewSessionLogger(options SessionLogOptions) (*slog.Logger, func() error, error) {
	if options.File == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	level, err := ParseLevel(options.Level)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(options.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session log: %w", err)
	}
	handler, err := newHandler(file, options.Format, level)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return slog.New(handler), file.Close, nil
}

func newHandler(writer io.Writer, format string, level slog.Level) (slog.Handler, error) {
	options := &slog.HandlerOptions{Level: level}
	switch format {
	case "", "json":
		return slog.NewJSONHandler(writer, options), nil
	case "text":
		return slog.NewTextHandler(writer, options), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", format)
	}
}

// ParseLevel converts a level name to a slog.Level. The empty string
// means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}
