package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsValidLogLevel(t *testing.T) {
	for _, l := range []string{"debug", "INFO", "Warn", "error"} {
		assert.True(t, IsValidLogLevel(l), l)
	}
	for _, l := range []string{"", "verbose", "trace"} {
		assert.False(t, IsValidLogLevel(l), l)
	}
}

func TestBuildLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formrelay.log")
	logger := BuildLogger("info", "prod", FileOptions{Path: path, MaxSizeMB: 1})

	logger.Debug("hidden")
	logger.Info("listening", zap.String("base_url", "http://localhost:3000"))
	_ = logger.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "listening", lines[0]["msg"])
	assert.Equal(t, "http://localhost:3000", lines[0]["base_url"])
}

func TestBuildLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := BuildLogger("verbose", "dev", FileOptions{})
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}
