package plate

import (
	"context"
	"sync/atomic"
)

var _ CounterStore = (*LocalStore)(nil)

// LocalStore keeps the total in process memory. All mutation goes through a
// single atomic fetch-and-add, so concurrent adds are never lost.
type LocalStore struct {
	total atomic.Uint32
}

func NewLocalStore(base Total) *LocalStore {
	store := &LocalStore{}
	store.total.Store(uint32(base))

	return store
}

func (s *LocalStore) Total(_ context.Context) (Total, error) {
	return Total(s.total.Load()), nil
}

func (s *LocalStore) Add(ctx context.Context, delta Delta) (Total, error) {
	if delta < MinDelta {
		return s.Total(ctx)
	}

	return Total(s.total.Add(uint32(delta))), nil
}
