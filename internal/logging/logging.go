// Package logging builds the process logger and installs it as the slog
// default. The rest of the code logs through log/slog only.
package logging

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"

	"github.com/pdiddy/book-search/pkg/types"
)

// Setup creates a logger from cfg, makes it the slog default, and returns
// it. The caller must Close it on exit to flush file output.
func Setup(cfg *types.LogConfig) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}
	log, err := logger.New(Options(cfg)...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// Options translates cfg into logger options. Console color is disabled so
// diagnostics interleave cleanly with the result table.
func Options(cfg *types.LogConfig) []logger.Option {
	format := ParseFormat(cfg.Format)
	opts := []logger.Option{
		logger.WithLevel(ParseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(false),
	}
	if cfg.File != "" {
		opts = append(opts,
			logger.WithFilePath(cfg.File),
			logger.WithFileFormat(format))
	}
	return opts
}

// ParseFormat maps "json" to JSON output and anything else to text.
func ParseFormat(s string) logger.OutputFormat {
	if strings.EqualFold(s, "json") {
		return logger.FormatJSON
	}
	return logger.FormatText
}

// ParseLevel converts a level name to a slog.Level. Unrecognized values
// default to warn, which keeps routine fetch failures quiet.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
