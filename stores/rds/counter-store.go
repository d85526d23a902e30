// Package rds keeps the counter in Redis. Increments run INCRBY inside a
// script that refuses to pass the counter maximum, so no update is ever lost
// and an overflowing add leaves the stored value untouched.
package rds

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	plate "github.com/weegigs/steel-plate-go"
)

const DefaultKey = "steel-plate:" + plate.CounterKey

const overflowReply = "OVERFLOW"

// boundedIncrement adds ARGV[1] to KEYS[1] unless the result would exceed
// ARGV[2]. A value that is not a number is left for INCRBY to reject.
var boundedIncrement = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current ~= nil and current + tonumber(ARGV[1]) > tonumber(ARGV[2]) then
  return redis.error_reply('` + overflowReply + ` total would exceed ' .. ARGV[2])
end
return redis.call('INCRBY', KEYS[1], ARGV[1])
`)

var _ plate.CounterStore = (*CounterStore)(nil)

type CounterStore struct {
	key     string
	client  redis.UniversalClient
	timeout time.Duration
}

func NewCounterStore(client redis.UniversalClient, key string) *CounterStore {
	if key == "" {
		key = DefaultKey
	}

	return &CounterStore{key: key, client: client, timeout: 2 * time.Second}
}

// Client returns a client tuned like the rest of the stack: short dial and
// io timeouts so a stuck server surfaces as an error instead of a hang.
func Client(addr string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{addr},
		DialTimeout:  time.Second * 2,
		ReadTimeout:  time.Second * 2,
		WriteTimeout: time.Second * 2,
		PoolTimeout:  time.Second * 5,
	})
}

func (c *CounterStore) Total(ctx context.Context) (plate.Total, error) {
	const op = "get-total"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := c.client.Get(ctx, c.key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, classify(op, err)
	}

	return totalOf(op, value)
}

func (c *CounterStore) Add(ctx context.Context, delta plate.Delta) (plate.Total, error) {
	const op = "add"

	if delta < plate.MinDelta {
		return c.Total(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := boundedIncrement.Run(ctx, c.client, []string{c.key}, int64(delta), int64(math.MaxUint32)).Int64()
	if err != nil {
		return 0, classify(op, err)
	}

	return totalOf(op, value)
}

func totalOf(op string, value int64) (plate.Total, error) {
	if value < 0 {
		return 0, plate.NewStoreError(plate.MalformedValue, op, errors.Errorf("negative total %d", value))
	}
	if value > math.MaxUint32 {
		return 0, plate.NewStoreError(plate.Overflow, op, errors.Errorf("total %d exceeds %d", value, uint32(math.MaxUint32)))
	}

	return plate.Total(value), nil
}

// classify separates a refused overflow and a stored value that is not an
// integer from transport failures.
func classify(op string, err error) error {
	var redisErr redis.Error
	var numErr *strconv.NumError
	if errors.As(err, &redisErr) && strings.Contains(redisErr.Error(), overflowReply) {
		return plate.NewStoreError(plate.Overflow, op, err)
	}
	if errors.As(err, &redisErr) || errors.As(err, &numErr) {
		return plate.NewStoreError(plate.MalformedValue, op, err)
	}

	return plate.NewStoreError(plate.Unavailable, op, err)
}
