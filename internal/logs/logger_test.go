package logs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"notifyy/internal/config"
)

func testLogConfig(dir string) config.LogConfig {
	return config.LogConfig{
		Level:      "info",
		Dir:        dir,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	logger, err := New(testLogConfig(dir))
	require.NoError(t, err)

	logger.Named("fileserver").Info("bound", zap.Int("port", 8001))
	logger.Debug("filtered out")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "bound", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fileserver", entry["logger"])
	assert.EqualValues(t, 8001, entry["port"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := testLogConfig(t.TempDir())
	cfg.Level = "loud"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_LogDirUnderRegularFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := New(testLogConfig(filepath.Join(file, "logs")))
	assert.Error(t, err)
}

func TestConsole(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"loud", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := Console(tt.level)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}
