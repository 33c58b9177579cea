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

	"github.com/kelseyhightower/envconfig"

	"confgate/internal/config"
)

// Levels beyond the four built into slog.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var (
	// globalLogger holds the application-wide logger instance
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	// globalLogFile holds the open log file for cleanup
	globalLogFile *os.File
	// logFileMu protects globalLogFile
	logFileMu sync.Mutex
)

// contextKey is a type for context keys
type contextKey string

const (
	// TraceIDContextKey is the key for storing trace ID in context
	TraceIDContextKey contextKey = "trace_id"
)

// LoggingConfig controls where logs go and how verbose they are.
type LoggingConfig struct {
	// Level comes from the LOG_LEVEL schema key, not from envconfig.
	Level    string `ignored:"true"`
	Output   string `envconfig:"LOG_OUTPUT" default:"console"`
	FilePath string `envconfig:"LOG_FILE" default:"logs/confgate.log"`
	// Writer overrides Output when set. Used by tests.
	Writer io.Writer `ignored:"true"`
}

// LoadLoggingConfig reads the log destination from CONFGATE_LOG_* variables
// and the verbosity from the LOG_LEVEL key.
func LoadLoggingConfig(svc *config.Service) (LoggingConfig, error) {
	var cfg LoggingConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load logging config from env: %w", err)
	}
	level, err := svc.GetString(config.KeyLogLevel)
	if err != nil {
		return cfg, err
	}
	cfg.Level = level
	return cfg, nil
}

// InitializeLogger creates and configures the global slog logger instance.
// This should be called once during application startup.
func InitializeLogger(cfg LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		globalLogger, err = NewLogger(cfg)
		if globalLogger != nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// GetLogger returns the global logger instance.
// If not initialized, returns the default slog logger.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger creates a JSON slog logger based on configuration
func NewLogger(cfg LoggingConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       ParseLogLevel(cfg.Level),
		ReplaceAttr: renameLevels,
	}

	output := cfg.Writer
	if output == nil {
		switch strings.ToLower(cfg.Output) {
		case "file":
			file, err := openLogFile(cfg.FilePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			setLogFile(file)
			output = file
		case "both":
			file, err := openLogFile(cfg.FilePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			setLogFile(file)
			output = io.MultiWriter(os.Stdout, file)
		default:
			output = os.Stdout
		}
	}

	handler := slog.NewJSONHandler(output, opts)
	return slog.New(&traceHandler{Handler: handler}), nil
}

// traceHandler wraps a slog.Handler to automatically inject trace_id from context
type traceHandler struct {
	slog.Handler
}

// Handle adds trace_id to the record if present in context
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new Handler with additional attributes
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new Handler with the given group name
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLogLevel converts a LOG_LEVEL value to a slog.Level. Unknown values
// fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "fatal":
		return LevelFatal
	default:
		return slog.LevelInfo
	}
}

// renameLevels prints TRACE and FATAL instead of DEBUG-4 and ERROR+4.
func renameLevels(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelTrace:
		a.Value = slog.StringValue("TRACE")
	case LevelFatal:
		a.Value = slog.StringValue("FATAL")
	}
	return a
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// CloseLogFile closes the global log file if open.
// This should be called during graceful shutdown or in tests.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// ResetLoggerForTesting resets the global logger state.
// This should only be called in tests.
func ResetLoggerForTesting() {
	CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

func setLogFile(file *os.File) {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	globalLogFile = file
}

// openLogFile opens or creates a log file with proper permissions
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return file, nil
}
