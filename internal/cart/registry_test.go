package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRegistryReturnsSameStorePerScope(t *testing.T) {
	registry, err := NewRegistry(newMemoryStorage(), testLogger(), StoreOptions{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	ctx := context.Background()

	first, err := registry.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := registry.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if first != second {
		t.Fatal("expected the same store instance per scope")
	}

	other, err := registry.Get(ctx, "user-2")
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if other == first {
		t.Fatal("expected distinct stores per scope")
	}
}

func TestRegistryHydratesFromStorage(t *testing.T) {
	storage := newMemoryStorage()
	seed := Snapshot{Lines: []Line{{Key: "A", UnitPrice: decimal.RequireFromString("50"), Quantity: 2}}}
	seed.Recompute()
	if err := storage.Save(context.Background(), "user-1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	registry, err := NewRegistry(storage, testLogger(), StoreOptions{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	store, err := registry.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if store.ItemCount() != 2 {
		t.Fatalf("expected hydrated count 2, got %d", store.ItemCount())
	}
}

func TestRegistryEvictRehydrates(t *testing.T) {
	storage := newMemoryStorage()
	registry, err := NewRegistry(storage, testLogger(), StoreOptions{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	ctx := context.Background()

	store, err := registry.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := store.AddItem(ctx, itemA()); err != nil {
		t.Fatalf("add: %v", err)
	}

	registry.Evict("user-1")

	fresh, err := registry.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get after evict: %v", err)
	}
	if fresh == store {
		t.Fatal("expected a new store instance after evict")
	}
	if fresh.ItemCount() != 1 {
		t.Fatalf("expected rehydrated count 1, got %d", fresh.ItemCount())
	}
}

func TestRegistryFlushAll(t *testing.T) {
	storage := newMemoryStorage()
	registry, err := NewRegistry(storage, testLogger(), StoreOptions{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	ctx := context.Background()

	store, err := registry.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	storage.setFail(true)
	if _, err := store.AddItem(ctx, itemA()); err != nil {
		t.Fatalf("add: %v", err)
	}
	storage.setFail(false)

	if err := registry.FlushAll(ctx); err != nil {
		t.Fatalf("flush all: %v", err)
	}
	if _, ok := storage.stored("user-1"); !ok {
		t.Fatal("expected snapshot stored after flush")
	}
}
