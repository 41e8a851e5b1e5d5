package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/responses"
	"github.com/henriquelv/rottava-agro-pet-sub003/api/validators"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/products"
	pkgerrors "github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

func parsePathID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}

type createProductRequest struct {
	Name        string           `json:"name" validate:"required,min=2"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Category    string           `json:"category" validate:"required"`
	Brand       *string          `json:"brand"`
	Price       decimal.Decimal  `json:"price" validate:"required"`
	PromoPrice  *decimal.Decimal `json:"promo_price"`
	Stock       int              `json:"stock" validate:"min=0"`
	Image       *string          `json:"image"`
	Tags        []string         `json:"tags"`
}

// AdminProductCreate registers a new catalog product.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			Name:        body.Name,
			Slug:        body.Slug,
			Description: body.Description,
			Category:    body.Category,
			Brand:       body.Brand,
			Price:       body.Price,
			PromoPrice:  body.PromoPrice,
			Stock:       body.Stock,
			Image:       body.Image,
			Tags:        body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Brand       *string          `json:"brand"`
	Price       *decimal.Decimal `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promo_price"`
	ClearPromo  bool             `json:"clear_promo"`
	Image       *string          `json:"image"`
	Tags        []string         `json:"tags"`
	IsActive    *bool            `json:"is_active"`
}

// AdminProductUpdate applies a partial edit to a catalog product.
func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, products.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
			Brand:       body.Brand,
			Price:       body.Price,
			PromoPrice:  body.PromoPrice,
			ClearPromo:  body.ClearPromo,
			Image:       body.Image,
			Tags:        body.Tags,
			IsActive:    body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a product from the catalog.
func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AdminProductAdjustStock applies a relative stock change.
func AdminProductAdjustStock(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdjustStock(r.Context(), id, body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
