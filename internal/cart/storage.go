package cart

import "context"

// Storage persists complete cart snapshots keyed by an owner scope. Every
// write replaces the whole snapshot; there are no partial updates.
//
// Load returns (nil, nil) when no snapshot exists. Adapters must tolerate a
// corrupt stored entry the same way so a bad record never blocks the owner
// from shopping.
type Storage interface {
	Load(ctx context.Context, scope string) (*Snapshot, error)
	Save(ctx context.Context, scope string, snap Snapshot) error
	Delete(ctx context.Context, scope string) error
}
