package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger fields
const (
	RequestID = "request_id"
	Operation = "operation"
	Component = "component"
)

type requestIDKey struct{}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Setup configures the process-wide logger: console output when pretty is
// set, JSON otherwise.
func Setup(w io.Writer, level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// WithRequestID returns a context carrying rid for downstream loggers.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// GetRequestID extracts the request ID from ctx, or "".
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// For returns a logger tagged with a component name.
func For(component string) *zerolog.Logger {
	l := log.With().Str(Component, component).Logger()
	return &l
}

// IsTerminal reports whether w is a terminal, in which case Setup should be
// asked for console output.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Logger provides operation-scoped logging
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger with the request ID found in ctx
func NewLogger(ctx context.Context, component string) *Logger {
	requestID := GetRequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{zl: For(component).With().Str(RequestID, requestID).Logger()}
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	l.zl.Error().Str(Operation, operation).Err(err).Send()
}

// LogErrorf logs a formatted error with context
func (l *Logger) LogErrorf(operation string, format string, args ...interface{}) {
	l.zl.Error().Str(Operation, operation).Msgf(format, args...)
}

// LogInfo logs an info message with context
func (l *Logger) LogInfo(operation string, message string) {
	l.zl.Info().Str(Operation, operation).Msg(message)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.zl.Info().Str(Operation, operation).Msgf(format, args...)
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	l.zl.Warn().Str(Operation, operation).Msgf(format, args...)
}

// LogDebugf logs a formatted debug message with context
func (l *Logger) LogDebugf(operation string, format string, args ...interface{}) {
	l.zl.Debug().Str(Operation, operation).Msgf(format, args...)
}
