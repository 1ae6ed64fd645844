package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/programme-lv/kernval/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	l, err := logger.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = logger.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = logger.ParseLevel("loud")
	require.Error(t, err)
}

func TestNewWritesPlainTextToBuffers(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Component(logger.New(&buf, slog.LevelInfo), "tester")
	log.Debug("hidden")
	log.Info("case finished", "case", "add-128-common")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "case finished")
	assert.Contains(t, out, "component=tester")
	assert.Contains(t, out, "case=add-128-common")
	assert.NotContains(t, out, "\x1b[")
}
