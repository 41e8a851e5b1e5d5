package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/middleware"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/cart"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	pkgerrors "github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type memoryCartStorage struct {
	mu    sync.Mutex
	snaps map[string]cart.Snapshot
}

func newMemoryCartStorage() *memoryCartStorage {
	return &memoryCartStorage{snaps: map[string]cart.Snapshot{}}
}

func (m *memoryCartStorage) Load(ctx context.Context, scope string) (*cart.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[scope]
	if !ok {
		return nil, nil
	}
	clone := snap.Clone()
	return &clone, nil
}

func (m *memoryCartStorage) Save(ctx context.Context, scope string, snap cart.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[scope] = snap.Clone()
	return nil
}

func (m *memoryCartStorage) Delete(ctx context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, scope)
	return nil
}

type stubCartProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCartProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func newCartFixture(t *testing.T) (*cart.Registry, *stubCartProducts, uuid.UUID) {
	t.Helper()
	registry, err := cart.NewRegistry(newMemoryCartStorage(), testLogger(), cart.StoreOptions{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	productID := uuid.New()
	loader := &stubCartProducts{products: map[uuid.UUID]*models.Product{
		productID: {
			ID:       productID,
			Name:     "Dog food 10kg",
			Price:    decimal.RequireFromString("50"),
			Stock:    10,
			IsActive: true,
		},
	}}
	return registry, loader, productID
}

func authedRequest(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	return req.WithContext(ctx)
}

func decodeSnapshot(t *testing.T, body []byte) cart.Snapshot {
	t.Helper()
	var payload struct {
		Data cart.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return payload.Data
}

func TestCartAddItem(t *testing.T) {
	registry, loader, productID := newCartFixture(t)
	userID := uuid.New()

	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), userID)
	rec := httptest.NewRecorder()
	CartAddItem(registry, loader, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec.Body.Bytes())
	if snap.ItemCount != 3 {
		t.Fatalf("expected 3 items got %d", snap.ItemCount)
	}
	if !snap.Total.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected total 150 got %s", snap.Total)
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	registry, loader, _ := newCartFixture(t)

	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	CartAddItem(registry, loader, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCartAddItemInactiveProduct(t *testing.T) {
	registry, loader, productID := newCartFixture(t)
	loader.products[productID].IsActive = false

	body := `{"product_id":"` + productID.String() + `"}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	CartAddItem(registry, loader, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestCartRequiresAuthContext(t *testing.T) {
	registry, _, _ := newCartFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	CartGet(registry, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCartUpdateAndRemoveItem(t *testing.T) {
	registry, loader, productID := newCartFixture(t)
	userID := uuid.New()
	lineKey := productID.String()

	add := `{"product_id":"` + productID.String() + `"}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(add)), userID)
	rec := httptest.NewRecorder()
	CartAddItem(registry, loader, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d", rec.Code)
	}

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("lineKey", lineKey)
	req = authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+lineKey, strings.NewReader(`{"quantity":5}`)), userID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec = httptest.NewRecorder()
	CartUpdateItem(registry, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.ItemCount != 5 {
		t.Fatalf("expected 5 items got %d", snap.ItemCount)
	}

	routeCtx = chi.NewRouteContext()
	routeCtx.URLParams.Add("lineKey", lineKey)
	req = authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+lineKey, nil), userID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec = httptest.NewRecorder()
	CartRemoveItem(registry, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200 got %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); !snap.IsEmpty() {
		t.Fatalf("expected empty cart after remove")
	}
}

func TestCartClear(t *testing.T) {
	registry, loader, productID := newCartFixture(t)
	userID := uuid.New()

	add := `{"product_id":"` + productID.String() + `","quantity":2}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(add)), userID)
	rec := httptest.NewRecorder()
	CartAddItem(registry, loader, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d", rec.Code)
	}

	req = authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), userID)
	rec = httptest.NewRecorder()
	CartClear(registry, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200 got %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); !snap.IsEmpty() {
		t.Fatalf("expected empty cart after clear")
	}
}
