package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/redis"
)

type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartStorageKey(scope string) string
}

// RedisStorage keeps cart snapshots as JSON documents under the namespaced
// cart-storage key, expiring abandoned carts after the configured TTL.
type RedisStorage struct {
	kv   redisKV
	ttl  time.Duration
	logg *logger.Logger
}

// NewRedisStorage builds the Redis-backed snapshot adapter.
func NewRedisStorage(kv redisKV, ttl time.Duration, logg *logger.Logger) (*RedisStorage, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisStorage{kv: kv, ttl: ttl, logg: logg}, nil
}

// Load reads the stored snapshot. Missing and corrupt entries both yield
// (nil, nil) so the owner starts from an empty cart.
func (r *RedisStorage) Load(ctx context.Context, scope string) (*Snapshot, error) {
	raw, err := r.kv.Get(ctx, r.kv.CartStorageKey(scope))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		r.logg.Warn(ctx, fmt.Sprintf("corrupt cart snapshot for scope %s, discarding: %v", scope, err))
		return nil, nil
	}
	for _, line := range snap.Lines {
		if line.Key == "" || line.Quantity < 1 {
			r.logg.Warn(ctx, fmt.Sprintf("corrupt cart snapshot for scope %s, discarding", scope))
			return nil, nil
		}
	}
	// stored aggregates are advisory only
	snap.Recompute()
	return &snap, nil
}

// Save writes the complete snapshot atomically, refreshing the TTL.
func (r *RedisStorage) Save(ctx context.Context, scope string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	if err := r.kv.Set(ctx, r.kv.CartStorageKey(scope), payload, r.ttl); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

// Delete removes the stored snapshot.
func (r *RedisStorage) Delete(ctx context.Context, scope string) error {
	if err := r.kv.Del(ctx, r.kv.CartStorageKey(scope)); err != nil {
		return fmt.Errorf("deleting cart snapshot: %w", err)
	}
	return nil
}
