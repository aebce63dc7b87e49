package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/tent-booking/internal/config"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, level("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, level("warn"))
	assert.Equal(t, zapcore.InfoLevel, level("chatty"))
	assert.Equal(t, zapcore.InfoLevel, level(""))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newWithSyncer(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))

	log.Debug("hidden")
	log.Info("booking created")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "booking created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	log, err := New(config.LogConfig{Level: "info", Output: "file", FilePath: path})
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
}
