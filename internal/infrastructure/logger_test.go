package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confgate/internal/config"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log output is not valid JSON")
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	logger, err := InitializeLogger(LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file was not created")

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entries := decodeLines(t, content)
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggingConfig{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "test-trace-123", entries[0]["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		configured string
		logAt      slog.Level
		wantLevel  string
		wantLogged bool
	}{
		{configured: "trace", logAt: LevelTrace, wantLevel: "TRACE", wantLogged: true},
		{configured: "debug", logAt: LevelTrace, wantLogged: false},
		{configured: "debug", logAt: slog.LevelDebug, wantLevel: "DEBUG", wantLogged: true},
		{configured: "info", logAt: slog.LevelDebug, wantLogged: false},
		{configured: "info", logAt: slog.LevelInfo, wantLevel: "INFO", wantLogged: true},
		{configured: "warn", logAt: slog.LevelWarn, wantLevel: "WARN", wantLogged: true},
		{configured: "error", logAt: slog.LevelWarn, wantLogged: false},
		{configured: "error", logAt: slog.LevelError, wantLevel: "ERROR", wantLogged: true},
		{configured: "fatal", logAt: slog.LevelError, wantLogged: false},
		{configured: "fatal", logAt: LevelFatal, wantLevel: "FATAL", wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"/"+tt.logAt.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(LoggingConfig{Level: tt.configured, Writer: &buf})
			require.NoError(t, err)

			logger.Log(context.Background(), tt.logAt, "message")

			if !tt.wantLogged {
				assert.Empty(t, buf.String())
				return
			}
			entries := decodeLines(t, buf.Bytes())
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
		})
	}
}

func TestParseLogLevel_Unknown(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARNING"))
}

func TestLoadLoggingConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := config.NewService(config.DefaultRegistry(), config.MapSource{})
		cfg, err := LoadLoggingConfig(svc)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "console", cfg.Output)
		assert.Equal(t, "logs/confgate.log", cfg.FilePath)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CONFGATE_LOG_OUTPUT", "file")
		t.Setenv("CONFGATE_LOG_FILE", "/tmp/confgate.log")
		svc := config.NewService(config.DefaultRegistry(), config.MapSource{config.KeyLogLevel: "warn"})

		cfg, err := LoadLoggingConfig(svc)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Level)
		assert.Equal(t, "file", cfg.Output)
		assert.Equal(t, "/tmp/confgate.log", cfg.FilePath)
	})

	t.Run("invalid level", func(t *testing.T) {
		svc := config.NewService(config.DefaultRegistry(), config.MapSource{config.KeyLogLevel: "loud"})
		_, err := LoadLoggingConfig(svc)
		require.Error(t, err)
		assert.True(t, config.IsInvalid(err))
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)), "EnsureTraceID changed existing trace ID")
	assert.Empty(t, GetTraceID(context.Background()))

	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func TestLoggerHelpers(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	globalLogger = logger

	WithComponent(logger, "test-component").Info("test message")
	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "test-component", entries[0]["component"])

	buf.Reset()
	WithComponent(nil, "fallback").Info("global logger")
	entries = decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback", entries[0]["component"])
}
