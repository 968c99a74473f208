package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf)).Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText)).Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("svc", "test"))).Info("msg")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})

	t.Run("context extractors", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
				if v, ok := ctx.Value(key{}).(int64); ok {
					return logger.OrganizationID(v), true
				}
				return slog.Attr{}, false
			}),
		)

		log.With("component", "test").InfoContext(context.WithValue(context.Background(), key{}, int64(42)), "resolved")
		entry := decode(t, buf)
		assert.EqualValues(t, 42, entry["organization_id"])
		assert.Equal(t, "test", entry["component"])
	})
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithConfig(logger.Config{Level: "debug", Format: "TEXT"}, "studiodesk"),
	)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "service=studiodesk")

	buf.Reset()
	log = logger.New(logger.WithOutput(buf), logger.WithConfig(logger.Config{Level: "warn"}, ""))
	log.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
