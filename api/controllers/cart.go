package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/middleware"
	"github.com/henriquelv/rottava-agro-pet-sub003/api/responses"
	"github.com/henriquelv/rottava-agro-pet-sub003/api/validators"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/cart"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	pkgerrors "github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

type cartRegistry interface {
	Get(ctx context.Context, scope string) (*cart.Store, error)
}

type cartProductLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

func cartScopeFromRequest(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return userID, nil
}

func resolveCartStore(r *http.Request, registry cartRegistry) (*cart.Store, error) {
	scope, err := cartScopeFromRequest(r)
	if err != nil {
		return nil, err
	}
	return registry.Get(r.Context(), scope)
}

// CartGet returns a snapshot of the caller's cart.
func CartGet(registry cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}

		store, err := resolveCartStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store.Snapshot())
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

// CartAddItem resolves the product and adds it to the caller's cart. The
// product's current prices are copied onto the line so later catalog edits
// do not silently reprice an open cart.
func CartAddItem(registry cartRegistry, loader cartProductLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil || loader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ProductID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		quantity := body.Quantity
		if quantity < 1 {
			quantity = 1
		}

		product, err := loader.GetByID(r.Context(), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product is no longer available"))
			return
		}

		store, err := resolveCartStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := cart.Item{
			Key:        cart.LineKey(product.ID.String(), body.VariantID),
			Name:       product.Name,
			UnitPrice:  product.Price,
			PromoPrice: product.PromoPrice,
		}
		if product.Image != nil {
			item.Image = *product.Image
		}

		var snapshot cart.Snapshot
		for i := 0; i < quantity; i++ {
			snapshot, err = store.AddItem(r.Context(), item)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, snapshot)
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateItem sets an absolute quantity on an existing line.
func CartUpdateItem(registry cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}

		lineKey := strings.TrimSpace(chi.URLParam(r, "lineKey"))
		if lineKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line key is required"))
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := resolveCartStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.UpdateQuantity(r.Context(), lineKey, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemoveItem drops a line from the caller's cart.
func CartRemoveItem(registry cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}

		lineKey := strings.TrimSpace(chi.URLParam(r, "lineKey"))
		if lineKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line key is required"))
			return
		}

		store, err := resolveCartStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.RemoveItem(r.Context(), lineKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartClear empties the caller's cart.
func CartClear(registry cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}

		store, err := resolveCartStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
