package dstest_test

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/sync/errgroup"

	plate "github.com/weegigs/steel-plate-go"
	"github.com/weegigs/steel-plate-go/stores/ds"
	"github.com/weegigs/steel-plate-go/stores/ds/dstest"
)

func TestDynamoCounterStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	settings := ds.DefaultSettings()
	settings.Consistency = ds.Optimistic
	settings.Attempts = 100

	store, tearDown, err := dstest.DynamoTestStore(ctx, settings)
	require.NoError(t, err)
	defer tearDown()

	_, err = store.Total(ctx)
	require.ErrorIs(t, err, plate.ErrRecordMissing)

	created, err := store.Seed(ctx, 40)
	require.NoError(t, err)
	require.True(t, created)

	t.Run("sequential adds", func(t *testing.T) {
		total, err := store.Add(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, plate.Total(41), total)

		total, err = store.Add(ctx, 99)
		require.NoError(t, err)
		assert.Equal(t, plate.Total(140), total)

		total, err = store.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, plate.Total(140), total)
	})

	t.Run("seed leaves an existing record alone", func(t *testing.T) {
		created, err := store.Seed(ctx, 0)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("optimistic concurrent adds are exact", func(t *testing.T) {
		before, err := store.Total(ctx)
		require.NoError(t, err)

		deltas := lo.Times(10, func(i int) plate.Delta { return plate.Delta(i + 1) })

		var g errgroup.Group
		for _, delta := range deltas {
			g.Go(func() error {
				_, err := store.Add(ctx, delta)
				return err
			})
		}
		require.NoError(t, g.Wait())

		after, err := store.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+plate.Total(lo.Sum(deltas)), after)
	})
}
