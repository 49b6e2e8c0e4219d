package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesEventAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.InfoObj("section fetched", "section_fetched", map[string]any{
		"section":  "weather",
		"articles": 5,
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "section fetched", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "section_fetched", ctx["event"])
	assert.Equal(t, "weather", ctx["section"])
	assert.EqualValues(t, 5, ctx["articles"])
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)

	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestEnsure(t *testing.T) {
	assert.Equal(t, NopLogger{}, Ensure(nil))

	zl := NewFromZap(nil)
	assert.Same(t, zl, Ensure(zl))
}
