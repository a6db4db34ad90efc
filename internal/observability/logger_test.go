// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/stylecore/internal/config"
)

// -- Test Helper Functions --

// syncBuffer is a goroutine safe WriteSyncer backed by memory.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// initCapture resets the global logger and initializes it writing into a buffer.
func initCapture(t *testing.T, cfg config.LoggerConfig) *syncBuffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf := &syncBuffer{}
	Initialize(cfg, buf)
	return buf
}

// -- Test Cases --

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "ConsoleTest",
			Colors:      config.ColorConfig{Info: "green"},
		}
		buf := initCapture(t, cfg)

		GetLogger().Info("hello console")
		Sync()

		output := buf.String()
		assert.Contains(t, output, colorGreen+"INFO"+colorReset, "level should be colorized")
		assert.Contains(t, output, "ConsoleTest.")
		assert.Contains(t, output, "hello console")
	})

	t.Run("should leave levels without a color plain", func(t *testing.T) {
		buf := initCapture(t, config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "Plain"})

		GetLogger().Debug("plain")
		Sync()

		assert.Contains(t, buf.String(), "DEBUG")
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("should initialize JSON logger", func(t *testing.T) {
		buf := initCapture(t, config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "JSONTest"})

		logger := GetLogger()
		logger.Info("filtered out")
		logger.Warn("document recovered")
		Sync()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1, "info is below the configured level")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "document recovered", entry["msg"])
	})

	t.Run("should fall back to info on an unknown level", func(t *testing.T) {
		buf := initCapture(t, config.LoggerConfig{Level: "loud", Format: "json"})

		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		Sync()

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("should write to a rotated log file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "stylecore.log")
		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "FileTest",
			LogFile:     logPath,
			MaxSize:     1,
		}
		initCapture(t, cfg)

		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
		assert.Contains(t, string(content), `"level":"ERROR"`, "file sink is always JSON")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		buf := initCapture(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"})
		logger1 := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&bytes.Buffer{}))
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Nil(t, globalLogger.Load(), "the fallback is not stored")
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		initCapture(t, config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})

	t.Run("sync before initialization is a no-op", func(t *testing.T) {
		ResetForTest()
		assert.NotPanics(t, Sync)
	})
}
