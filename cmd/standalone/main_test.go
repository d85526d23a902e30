package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plate "github.com/weegigs/steel-plate-go"
	"github.com/weegigs/steel-plate-go/support"
)

func withStore(t *testing.T, kind string) {
	t.Helper()

	previous := *optStore
	*optStore = kind
	t.Cleanup(func() { *optStore = previous })
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("local store is seeded from the environment", func(t *testing.T) {
		withStore(t, "local")
		t.Setenv(support.CountBaseVariable, "12")

		store, cleanup, err := openStore(ctx, logger)
		require.NoError(t, err)
		defer cleanup()

		total, err := store.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, plate.Total(12), total)
	})

	t.Run("bad seed stops startup", func(t *testing.T) {
		withStore(t, "local")
		t.Setenv(support.CountBaseVariable, "-4")

		_, _, err := openStore(ctx, logger)
		assert.ErrorContains(t, err, support.CountBaseVariable)
	})

	t.Run("dynamo connects lazily", func(t *testing.T) {
		withStore(t, "dynamo")
		t.Setenv("DYNAMODB_ENDPOINT", "")

		store, cleanup, err := openStore(ctx, logger)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &plate.LazyStore{}, store)
	})

	t.Run("bad consistency stops startup", func(t *testing.T) {
		withStore(t, "dynamo")
		t.Setenv("DYNAMODB_COUNTER_CONSISTENCY", "eventually")

		_, _, err := openStore(ctx, logger)
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		withStore(t, "floppy")

		_, _, err := openStore(ctx, logger)
		assert.ErrorContains(t, err, "floppy")
	})
}
