// Package logging provides structured JSON logging for kmviz.
//
// Logs go to stderr by default so stdout carries only the printed shapes
// and array contents.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with additional context fields.
type Logger struct {
	*slog.Logger
}

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	stageKey    contextKey = "stage"
	runStartKey contextKey = "run_start"
)

// Stage names one step of a run.
type Stage string

const (
	StageLoad   Stage = "load"
	StagePrint  Stage = "print"
	StageRender Stage = "render"
)

// Options configures a Logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a new Logger with JSON output on stderr.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a new Logger with JSON output to the provided writer.
func NewWithWriter(w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewWithOptions creates a Logger writing to w with the given level and format.
func NewWithOptions(w io.Writer, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithContext returns a logger with context values attached.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	logger := l.Logger

	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}
	if stage := StageFromContext(ctx); stage != "" {
		logger = logger.With(slog.String("stage", string(stage)))
	}

	return &Logger{Logger: logger}
}

// With returns a new logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID adds a run ID to the context.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// ContextWithStage adds the current stage to the context.
func ContextWithStage(ctx context.Context, stage Stage) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// ContextWithRunStart adds the run start time to the context.
func ContextWithRunStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, runStartKey, t)
}

// RunIDFromContext extracts the run ID from the context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// StageFromContext extracts the stage from the context.
func StageFromContext(ctx context.Context) Stage {
	if s, ok := ctx.Value(stageKey).(Stage); ok {
		return s
	}
	return ""
}

// RunStartFromContext extracts the run start time from the context.
func RunStartFromContext(ctx context.Context) time.Time {
	if t, ok := ctx.Value(runStartKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// ElapsedMs returns the milliseconds elapsed since the run started.
func ElapsedMs(ctx context.Context) float64 {
	start := RunStartFromContext(ctx)
	if start.IsZero() {
		return 0
	}
	return float64(time.Since(start).Microseconds()) / 1000.0
}
