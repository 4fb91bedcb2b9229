package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(nil)

		logger.With(slog.String("component", "cache")).WithGroup("fetch").Warn("stale", slog.String("dataset", "orders"))

		require.Equal(t, 1, handler.Count())
		AssertLogContains(t, handler, slog.LevelWarn, "stale")
		AssertLogAttr(t, handler, "component", "cache")
		AssertLogAttr(t, handler, "fetch.dataset", "orders")
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(nil)
		logger.Debug("one")
		handler.Clear()

		assert.Zero(t, handler.Count())
		AssertNoErrors(t, handler)
	})
}

func TestWriteFiles(t *testing.T) {
	dir := WriteFiles(t, map[string]string{
		"Orders.csv":   "ID\n1\n",
		"nested/a.csv":   "x\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "Orders.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID\n1\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "nested", "a.csv"))
}
