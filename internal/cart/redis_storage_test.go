package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type stubKV struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	default:
		s.values[key] = fmt.Sprintf("%v", v)
	}
	s.ttls[key] = ttl
	return nil
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *stubKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
		delete(s.ttls, key)
	}
	return nil
}

func (s *stubKV) CartStorageKey(scope string) string {
	return "rap:cart-storage:" + scope
}

func TestRedisStorageRoundTrip(t *testing.T) {
	kv := newStubKV()
	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}
	ctx := context.Background()

	snap := Snapshot{
		Lines: []Line{
			{Key: "A", Name: "Dog food 10kg", UnitPrice: decimal.RequireFromString("50"), Quantity: 2},
			{Key: "B", Name: "Cat litter", UnitPrice: decimal.RequireFromString("30"), PromoPrice: promo("20"), Quantity: 1},
		},
	}
	snap.Recompute()

	if err := storage.Save(ctx, "user-1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := kv.ttls["rap:cart-storage:user-1"]; ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	loaded, err := storage.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if len(loaded.Lines) != 2 || loaded.Lines[0].Key != "A" || loaded.Lines[1].Key != "B" {
		t.Fatalf("expected order-preserving round trip, got %+v", loaded.Lines)
	}
	if !loaded.Total.Equal(snap.Total) {
		t.Fatalf("expected total %s, got %s", snap.Total, loaded.Total)
	}
	if loaded.ItemCount != snap.ItemCount {
		t.Fatalf("expected count %d, got %d", snap.ItemCount, loaded.ItemCount)
	}
}

func TestRedisStorageMissingKeyLoadsNil(t *testing.T) {
	storage, err := NewRedisStorage(newStubKV(), time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}

	loaded, err := storage.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil snapshot, got %+v", loaded)
	}
}

func TestRedisStorageCorruptEntryLoadsNil(t *testing.T) {
	kv := newStubKV()
	kv.values["rap:cart-storage:user-1"] = "{not json"

	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}

	loaded, err := storage.Load(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("corrupt entry must not fail the caller: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil snapshot for corrupt entry, got %+v", loaded)
	}
}

func TestRedisStorageInvalidLineLoadsNil(t *testing.T) {
	cases := map[string]string{
		"zero quantity": `{"lines":[{"key":"A","name":"Dog food","unit_price":"50","quantity":0}]}`,
		"missing key":   `{"lines":[{"name":"Dog food","unit_price":"50","quantity":1}]}`,
	}
	for name, payload := range cases {
		kv := newStubKV()
		kv.values["rap:cart-storage:user-1"] = payload

		storage, err := NewRedisStorage(kv, time.Hour, testLogger())
		if err != nil {
			t.Fatalf("%s: new redis storage: %v", name, err)
		}

		loaded, err := storage.Load(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("%s: invalid line must not fail the caller: %v", name, err)
		}
		if loaded != nil {
			t.Fatalf("%s: expected nil snapshot, got %+v", name, loaded)
		}
	}
}

func TestHydrateDiscardsInvalidStoredLines(t *testing.T) {
	kv := newStubKV()
	kv.values["rap:cart-storage:user-1"] = `{"lines":[{"key":"A","unit_price":"50","quantity":0}]}`

	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}

	store := newTestStore(t, storage)
	store.Hydrate(context.Background())

	if count := store.ItemCount(); count != 0 {
		t.Fatalf("expected empty cart after invalid stored line, got count %d", count)
	}
	if lines := store.Snapshot().Lines; len(lines) != 0 {
		t.Fatalf("expected no lines, got %+v", lines)
	}
}

func TestRedisStorageRecomputesStoredAggregates(t *testing.T) {
	kv := newStubKV()
	kv.values["rap:cart-storage:user-1"] = `{"lines":[{"key":"A","name":"Dog food","unit_price":"50","quantity":2}],"total":"999","item_count":42}`

	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}

	loaded, err := storage.Load(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Total.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected recomputed total 100, got %s", loaded.Total)
	}
	if loaded.ItemCount != 2 {
		t.Fatalf("expected recomputed count 2, got %d", loaded.ItemCount)
	}
}

func TestRedisStorageTransportErrorSurfaces(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.New("connection refused")

	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}

	if _, err := storage.Load(context.Background(), "user-1"); err == nil {
		t.Fatal("expected transport error to surface")
	}
}

func TestRedisStorageDelete(t *testing.T) {
	kv := newStubKV()
	storage, err := NewRedisStorage(kv, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("new redis storage: %v", err)
	}
	ctx := context.Background()

	snap := Snapshot{Lines: []Line{{Key: "A", UnitPrice: decimal.RequireFromString("10"), Quantity: 1}}}
	snap.Recompute()
	if err := storage.Save(ctx, "user-1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := storage.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	loaded, err := storage.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil snapshot after delete")
	}
}
