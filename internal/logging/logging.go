// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the global zerolog logger.
//
// The terminal belongs to the UI, so logs go to a file. Packages log through
// github.com/rs/zerolog/log and never hold their own logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls logger setup.
type Options struct {
	Level zerolog.Level

	// File receives JSON log lines. Empty means stderr with a console writer.
	File string

	// WithCaller adds file:line to every entry.
	WithCaller bool
}

// nopCloser is returned when there is no file to close.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the global logger and returns the log file for closing.
func Setup(opts Options) (io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)

	if opts.File == "" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.WithCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	zerolog.SetGlobalLevel(opts.Level)

	return closer, nil
}

// Disable silences all logging.
func Disable() {
	log.Logger = zerolog.Nop()
}
