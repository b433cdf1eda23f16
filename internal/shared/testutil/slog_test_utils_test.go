package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level and message", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("Skipped malformed line", slog.Int("line", 7))
		logger.Warn("Requested month has no punches")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 2)

		skipped := handler.GetRecordsByMessage("Skipped")
		require.Len(t, skipped, 1)
		assert.Equal(t, int64(7), skipped[0].Attrs["line"])
	})

	t.Run("captures attributes added with With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "parser").Info("parsed", slog.Int("records", 10))
		logger.Info("plain")

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "parser", records[0].Attrs["component"])
		assert.NotContains(t, records[1].Attrs, "component")
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.With("k", "v").Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Zero(t, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}
