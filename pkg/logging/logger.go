// Package logging provides structured logging for nftrecon using zerolog.
// Console output is used when stderr is a terminal and JSON otherwise, so
// reconciliation runs read well interactively and stay machine-parseable
// when piped into log collectors.
//
// Loggers travel through context. Each stage tags the context it passes
// down, so a skipped contract read carries the run, stage and side:
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithStage(ctx, "contract")
//	logging.FromContext(ctx).Warn().Str("collection_id", id).Msg("Failed to read collection, skipping")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger serves callers without a logger in their context.
var defaultLogger = NewLoggerFromConfig(EnvConfig())

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
