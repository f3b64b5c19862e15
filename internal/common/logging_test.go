package common_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := common.SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("batch.complete", "files", 3)

	assert.Contains(t, stderr.String(), "batch.complete")
	assert.Contains(t, stderr.String(), "files=3")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "batch.complete", entry["msg"])
	assert.Equal(t, float64(3), entry["files"])
}

func TestSetupLoggerWithWritersRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := common.SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, stderr.String(), "quiet")
	assert.Contains(t, stderr.String(), "loud")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, common.ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, common.ParseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, common.ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, common.ParseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, common.ParseLogLevel("bogus"))
}
