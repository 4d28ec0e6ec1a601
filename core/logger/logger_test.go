package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/core/logger"
)

func TestNewWithWriter_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "info", Format: "json"})
	log.Info("hello", logger.Topic("news"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "news", entry["topic"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "info", Format: "text"})
	log.Info("hello")

	assert.True(t, strings.Contains(buf.String(), "msg=hello"))
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "warn", Format: "text"})
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))

	assert.Equal(t, "topic", logger.Topic("news").Key)
	assert.True(t, logger.Topic("").Equal(slog.Attr{}))

	attr = logger.ConnectionID(7)
	require.Equal(t, "connection_id", attr.Key)
	assert.EqualValues(t, 7, attr.Value.Int64())

	assert.True(t, logger.MessageID("").Equal(slog.Attr{}))
	assert.Equal(t, "message_id", logger.MessageID("m1").Key)

	assert.True(t, logger.SubscriptionID("").Equal(slog.Attr{}))
	assert.Equal(t, "component", logger.Component("fanout").Key)

	attr = logger.Count("delivered", 3)
	require.Equal(t, "delivered", attr.Key)
	assert.EqualValues(t, 3, attr.Value.Int64())
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := logger.Discard()
	require.NotNil(t, log)
	log.Error("goes nowhere")
}
