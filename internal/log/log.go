// Package log wires the run's logging: a colored console handler for the
// operator and a plaintext logfile for later inspection, fanned out behind a
// single context-carried clog logger.
package log

import (
	"context"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
)

// Options configures Setup.
type Options struct {
	// Debug lowers both handlers to debug level.
	Debug bool

	// FilePath, when non-empty, also appends every record to this file.
	FilePath string
}

// Setup builds the logger, installs it on the returned context and as the
// slog default, and returns a close func for the logfile. Failure to open the
// logfile degrades to console-only logging rather than aborting the run.
func Setup(ctx context.Context, opts Options) (context.Context, func()) {
	level := slog.LevelInfo
	charmLevel := charmlog.InfoLevel
	if opts.Debug {
		level = slog.LevelDebug
		charmLevel = charmlog.DebugLevel
	}

	console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmLevel,
	})

	handlers := []slog.Handler{console}
	closer := func() {}

	if opts.FilePath != "" {
		file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			console.Warn("failed to open log file, continuing console-only", "path", opts.FilePath, "error", err)
		} else {
			handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
			closer = func() { _ = file.Close() }
		}
	}

	logger := clog.New(slogmulti.Fanout(handlers...))
	ctx = clog.WithLogger(ctx, logger)
	slog.SetDefault(&logger.Logger)
	return ctx, closer
}
