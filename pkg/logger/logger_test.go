package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))

	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(nil))
}

func TestWithContextAddsCorrelationIDField(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	original := log
	log = zap.New(core)
	defer func() { log = original }()

	ctx := ContextWithCorrelationID(context.Background(), "context-id")
	WithContext(ctx).Info("matching run started")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "context-id", entries[0].ContextMap()["correlation_id"])
}

func TestWithContextWithoutCorrelationID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	original := log
	log = zap.New(core)
	defer func() { log = original }()

	WithContext(context.Background()).Info("no correlation")

	entries := recorded.All()
	require.Len(t, entries, 1)
	_, present := entries[0].ContextMap()["correlation_id"]
	assert.False(t, present)
}
