package plate

import (
	"context"
	"sync"
	"sync/atomic"
)

type StoreInitializer = func(ctx context.Context) (CounterStore, error)

var _ CounterStore = (*LazyStore)(nil)

// LazyStore defers construction of an expensive store, typically a remote
// client, until first use. The first caller runs the initializer while
// concurrent callers wait for it; a failed attempt is reported to its callers
// and retried by the next one. Once ready the store is reused lock free.
type LazyStore struct {
	init  StoreInitializer
	mu    sync.Mutex
	ready atomic.Pointer[storeHolder]
}

type storeHolder struct {
	store CounterStore
}

func NewLazyStore(init StoreInitializer) *LazyStore {
	return &LazyStore{init: init}
}

func (s *LazyStore) Store(ctx context.Context) (CounterStore, error) {
	if holder := s.ready.Load(); holder != nil {
		return holder.store, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if holder := s.ready.Load(); holder != nil {
		return holder.store, nil
	}

	store, err := s.init(ctx)
	if err != nil {
		if IsStoreError(err) {
			return nil, err
		}
		return nil, NewStoreError(Unavailable, "initialize", err)
	}

	s.ready.Store(&storeHolder{store: store})
	return store, nil
}

func (s *LazyStore) Total(ctx context.Context) (Total, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return 0, err
	}

	return store.Total(ctx)
}

func (s *LazyStore) Add(ctx context.Context, delta Delta) (Total, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return 0, err
	}

	return store.Add(ctx, delta)
}
