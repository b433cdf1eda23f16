package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "attendance_processor.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_AppendsAcrossRuns(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "diag.log")
	cfg := config.LoggingConfig{Level: "info", Output: "file", FilePath: logFile}

	for i := 0; i < 2; i++ {
		ResetLoggerForTesting()
		logger, err := InitializeLogger(cfg)
		require.NoError(t, err)
		logger.Warn("skipped line", "line", i)
		require.NoError(t, CloseLogFile())
	}
	ResetLoggerForTesting()

	file, err := os.Open(logFile)
	require.NoError(t, err)
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestRunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run")
	logger.Info("without run")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "run-123", first["run_id"])
	assert.NotContains(t, second, "run_id")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), "level %q", in)
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	runID := GetRunID(ctx)
	assert.Len(t, runID, 36)

	// an existing ID is preserved
	assert.Equal(t, runID, GetRunID(EnsureRunID(ctx)))
	assert.NotEqual(t, runID, GenerateRunID())
}
