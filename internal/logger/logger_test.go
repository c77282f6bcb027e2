package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hazmate/internal/logger"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := logger.New(logger.Config{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err)
		assert.NotPanics(t, func() { l.Debug("hello", logger.String("format", format)) })
	}
}

func TestNew_BadOutputPath(t *testing.T) {
	_, err := logger.New(logger.Config{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
}

func TestFromZap_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.FromZap(zap.New(core)).With(logger.String("request_id", "r-1"))

	l.Debug("dropped")
	l.Error("stage failed", logger.Error(errors.New("boom")), logger.Int("status", 502))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "stage failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.EqualValues(t, 502, fields["status"])
}

func TestContext(t *testing.T) {
	fallback := logger.NewNop()
	assert.Same(t, fallback, logger.FromContext(context.Background(), fallback))

	core, _ := observer.New(zapcore.InfoLevel)
	scoped := logger.FromZap(zap.New(core))
	ctx := logger.WithContext(context.Background(), scoped)
	assert.Same(t, scoped, logger.FromContext(ctx, fallback))
}
