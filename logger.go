package quditgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with quditgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDims adds the dimension vector to the logger.
func (l *Logger) WithDims(dims []int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dims", dims),
	}
}

// WithShots adds a shot count field to the logger.
func (l *Logger) WithShots(shots int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shots", shots),
	}
}

// LogConstruct logs simulator construction.
func (l *Logger) LogConstruct(ctx context.Context, particles, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "construct failed",
			"particles", particles,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "construct completed",
			"particles", particles,
			"size", size,
		)
	}
}

// LogApply logs an operator application.
func (l *Logger) LogApply(ctx context.Context, operator string, targets []int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "apply failed",
			"operator", operator,
			"targets", targets,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "apply completed",
			"operator", operator,
			"targets", targets,
		)
	}
}

// LogCircuit logs a circuit replay.
func (l *Logger) LogCircuit(ctx context.Context, steps int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "circuit failed",
			"steps", steps,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "circuit completed",
			"steps", steps,
		)
	}
}

// LogMeasure logs a measurement sampling operation.
func (l *Logger) LogMeasure(ctx context.Context, shots, outcomes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "measure failed",
			"shots", shots,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "measure completed",
			"shots", shots,
			"outcomes", outcomes,
		)
	}
}

// LogCollapse logs a single-shot collapsing measurement.
func (l *Logger) LogCollapse(ctx context.Context, outcome string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "collapse failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "collapse completed",
			"outcome", outcome,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, direction string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"direction", direction,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"direction", direction,
			"amplitudes", size,
		)
	}
}
