package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

// Registry resolves the cart store for an owner scope, hydrating it from
// storage on first access. It is constructed once at application start and
// passed to the surfaces that need carts; there is no package-level instance.
type Registry struct {
	storage Storage
	logg    *logger.Logger
	opts    StoreOptions

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry builds a cart registry over the given snapshot storage.
func NewRegistry(storage Storage, logg *logger.Logger, opts StoreOptions) (*Registry, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Registry{
		storage: storage,
		logg:    logg,
		opts:    opts,
		stores:  map[string]*Store{},
	}, nil
}

// Get returns the store for the scope, creating and hydrating it on first
// access. A scope with no stored snapshot starts empty.
func (r *Registry) Get(ctx context.Context, scope string) (*Store, error) {
	r.mu.Lock()
	if store, ok := r.stores[scope]; ok {
		r.mu.Unlock()
		return store, nil
	}
	r.mu.Unlock()

	store, err := NewStore(scope, r.storage, r.logg, r.opts)
	if err != nil {
		return nil, err
	}
	store.Hydrate(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	// another goroutine may have hydrated the same scope first
	if existing, ok := r.stores[scope]; ok {
		return existing, nil
	}
	r.stores[scope] = store
	return store, nil
}

// Evict drops the in-memory store for a scope. The durable snapshot is kept;
// the next Get rehydrates from it.
func (r *Registry) Evict(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, scope)
}

// FlushAll persists every resident store, aggregating failures. Called on
// shutdown so pending retries are not lost.
func (r *Registry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, store := range r.stores {
		stores = append(stores, store)
	}
	r.mu.Unlock()

	var errs error
	for _, store := range stores {
		if err := store.Flush(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("scope %s: %w", store.Scope(), err))
		}
	}
	return errs
}
