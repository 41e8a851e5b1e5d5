package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

// Subscriber receives the full snapshot after every mutation.
type Subscriber func(Snapshot)

// Store owns the authoritative cart state for one owner scope. Mutations are
// applied to the in-memory line list synchronously under the store lock, so
// two rapid calls always observe each other's effects in call order; the
// durable write that follows is best-effort and never affects ordering or the
// caller-visible result.
type Store struct {
	scope       string
	storage     Storage
	logg        *logger.Logger
	maxQuantity int

	mu          sync.Mutex
	lines       []Line
	subscribers map[int]Subscriber
	nextSubID   int

	// saveMu serializes durable writes so snapshots reach storage in
	// mutation order; it is acquired while mu is still held, never the
	// other way around. dirty is guarded by saveMu.
	saveMu sync.Mutex
	dirty  bool
}

// StoreOptions tunes a single cart store.
type StoreOptions struct {
	// MaxQuantity caps the per-line quantity; zero means unlimited.
	MaxQuantity int
}

// NewStore builds an empty cart store for the given owner scope.
func NewStore(scope string, storage Storage, logg *logger.Logger, opts StoreOptions) (*Store, error) {
	if scope == "" {
		return nil, fmt.Errorf("cart scope required")
	}
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{
		scope:       scope,
		storage:     storage,
		logg:        logg,
		maxQuantity: opts.MaxQuantity,
		subscribers: map[int]Subscriber{},
	}, nil
}

// Scope returns the owner scope the store persists under.
func (s *Store) Scope() string {
	return s.scope
}

// Hydrate replaces the in-memory state with the stored snapshot. A missing,
// corrupt, or unreadable snapshot leaves the cart empty rather than failing.
func (s *Store) Hydrate(ctx context.Context) {
	snap, err := s.storage.Load(ctx, s.scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("cart load failed for scope %s, starting empty: %v", s.scope, err))
		s.lines = nil
		return
	}
	if snap == nil {
		s.lines = nil
		return
	}
	s.lines = snap.Clone().Lines
}

// AddItem appends a new line with quantity 1, or increments the quantity of
// the existing line with the same key. Repeated adds accumulate; they never
// create duplicate lines.
func (s *Store) AddItem(ctx context.Context, item Item) (Snapshot, error) {
	if err := item.validate(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].Key != item.Key {
			continue
		}
		if s.maxQuantity > 0 && s.lines[i].Quantity >= s.maxQuantity {
			s.mu.Unlock()
			return Snapshot{}, errors.New(errors.CodeValidation, "line quantity limit reached")
		}
		s.lines[i].Quantity++
		merged = true
		break
	}
	if !merged {
		s.lines = append(s.lines, Line{
			Key:        item.Key,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			PromoPrice: item.PromoPrice,
			Quantity:   1,
			Image:      item.Image,
		})
	}
	return s.commitLocked(ctx), nil
}

// RemoveItem drops the line with the given key. Removing an absent key is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, key string) (Snapshot, error) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.Key != key {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	return s.commitLocked(ctx), nil
}

// UpdateQuantity sets the line's quantity to an absolute value. A quantity
// below 1 removes the line, matching the storefront's long-standing policy.
// The line must already exist; callers add items first.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) (Snapshot, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, key)
	}
	if s.maxQuantity > 0 && quantity > s.maxQuantity {
		return Snapshot{}, errors.New(errors.CodeValidation, "line quantity limit reached")
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].Key != key {
			continue
		}
		s.lines[i].Quantity = quantity
		return s.commitLocked(ctx), nil
	}
	s.mu.Unlock()
	return Snapshot{}, errors.New(errors.CodeNotFound, "cart line not found")
}

// Clear resets the cart to empty. Always succeeds.
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	s.lines = nil
	return s.commitLocked(ctx), nil
}

// Snapshot returns a copy of the current state with totals recomputed from
// the line list.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total projects the cart total from the current line list.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total
}

// ItemCount projects the summed quantities from the current line list.
func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount
}

// Subscribe registers a callback invoked with the new snapshot after every
// mutation. The returned cancel func unregisters it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Flush forces a durable write of the current snapshot. Used on shutdown and
// after checkout so a pending retry is not lost.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()

	if err := s.storage.Save(ctx, s.scope, snap); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "persisting cart snapshot")
	}
	s.dirty = false
	return nil
}

// Dirty reports whether the last durable write failed and a retry is pending.
func (s *Store) Dirty() bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.dirty
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Lines: s.lines}
	snap.Recompute()
	return snap.Clone()
}

// commitLocked finishes a mutation: it recomputes the snapshot, writes it to
// storage best-effort, and notifies subscribers. The caller must hold s.mu on
// entry; it is released here. saveMu is taken before mu is released so
// concurrent mutations persist their snapshots in mutation order and a stale
// snapshot can never overwrite a newer one.
func (s *Store) commitLocked(ctx context.Context) Snapshot {
	snap := s.snapshotLocked()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.saveMu.Lock()
	s.mu.Unlock()

	if err := s.storage.Save(ctx, s.scope, snap); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("cart save failed for scope %s, will retry on next mutation: %v", s.scope, err))
		s.dirty = true
	} else {
		s.dirty = false
	}
	s.saveMu.Unlock()

	for _, fn := range subs {
		fn(snap.Clone())
	}
	return snap
}
