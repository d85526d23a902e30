package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, zerolog.InfoLevel, Logger().GetLevel())

	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, zerolog.DebugLevel, Logger().GetLevel())

	t.Setenv("LOG_LEVEL", "shouty")
	assert.Equal(t, zerolog.InfoLevel, Logger().GetLevel())
}

func TestTracing(t *testing.T) {
	ctx := context.Background()

	t.Setenv(TraceVariable, "")
	shutdown, err := Tracing(ctx)
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	t.Setenv(TraceVariable, "console")
	shutdown, err = Tracing(ctx)
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	t.Setenv(TraceVariable, "carrier-pigeon")
	_, err = Tracing(ctx)
	assert.Error(t, err)
}

func TestLive(t *testing.T) {
	t.Setenv("DYNAMODB_COUNTER_CONSISTENCY", "sometimes")
	_, err := live()
	assert.Error(t, err)

	t.Setenv("DYNAMODB_COUNTER_CONSISTENCY", "optimistic")
	handler, err := live()
	require.NoError(t, err)
	assert.NotNil(t, handler)
}
