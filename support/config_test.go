package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plate "github.com/weegigs/steel-plate-go"
)

func TestCountBase(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		t.Setenv(CountBaseVariable, "4294967295")
		base, err := CountBase()
		require.NoError(t, err)
		assert.Equal(t, plate.Total(4294967295), base)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv(CountBaseVariable, "4294967296")
		_, err := CountBase()
		assert.Error(t, err)
	})

	t.Run("not a number", func(t *testing.T) {
		t.Setenv(CountBaseVariable, "lots")
		_, err := CountBase()
		assert.ErrorContains(t, err, CountBaseVariable)
	})
}

func TestAddr(t *testing.T) {
	t.Setenv(AddrVariable, "")
	assert.Equal(t, DefaultAddr, Addr())

	t.Setenv(AddrVariable, "0.0.0.0:9000")
	assert.Equal(t, "0.0.0.0:9000", Addr())
}

func TestLogger(t *testing.T) {
	_, err := Logger("test", "loud")
	assert.Error(t, err)

	log, err := Logger("test", "warn")
	require.NoError(t, err)
	assert.Equal(t, "warn", log.GetLevel().String())
}

func TestTracing(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Tracing(ctx, "test", "none")
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	_, err = Tracing(ctx, "test", "jaeger")
	assert.Error(t, err)

	t.Setenv(HoneycombTeamVariable, "")
	_, err = Tracing(ctx, "test", "honeycomb")
	assert.ErrorContains(t, err, HoneycombTeamVariable)
}
