package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"lobstat/internal/config"
)

// process-wide logger state; commands initialize it once
var logState struct {
	sync.Mutex
	logger *slog.Logger
	file   *os.File
}

type ctxKey int

const (
	runIDKey ctxKey = iota
	unitKey
)

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the logger built by the first one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logState.Lock()
	defer logState.Unlock()
	if logState.logger != nil {
		return logState.logger, nil
	}

	w, file, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}
	logState.file = file
	logState.logger = NewLogger(w, cfg.Level)
	slog.SetDefault(logState.logger)
	return logState.logger, nil
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger ran.
func GetLogger() *slog.Logger {
	logState.Lock()
	defer logState.Unlock()
	if logState.logger == nil {
		return slog.Default()
	}
	return logState.logger
}

// logOutput resolves the "stdout", "file" and "both" outputs. The returned
// file is nil for stdout.
func logOutput(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return os.Stdout, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", cfg.FilePath, err)
	}
	if mode == "both" {
		return io.MultiWriter(os.Stdout, f), f, nil
	}
	return f, f, nil
}

// NewLogger returns a JSON logger writing to w. Records logged with a
// context carry its run id, unit id and trace id.
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	})
	return slog.New(contextHandler{handler})
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	if id := UnitID(ctx); id != "" {
		r.AddAttrs(slog.String("unit", id))
	}
	if id := TraceIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID tags ctx with a batch run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// EnsureRunID tags ctx with a new run id unless it already carries one.
func EnsureRunID(ctx context.Context) context.Context {
	if RunID(ctx) != "" {
		return ctx
	}
	return WithRunID(ctx, NewRunID())
}

// RunID returns the run id of ctx, or "".
func RunID(ctx context.Context) string {
	return ctxString(ctx, runIDKey)
}

// WithUnit tags ctx with the id of the unit of work being executed.
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, unitKey, unit)
}

// UnitID returns the unit id of ctx, or "".
func UnitID(ctx context.Context) string {
	return ctxString(ctx, unitKey)
}

func ctxString(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	logState.Lock()
	defer logState.Unlock()
	if logState.file == nil {
		return nil
	}
	err := logState.file.Close()
	logState.file = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so a test can initialize
// a new one.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	logState.Lock()
	logState.logger = nil
	logState.Unlock()
}
