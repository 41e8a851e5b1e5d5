package controllers

import (
	"net/http"
	"strings"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/responses"
	"github.com/henriquelv/rottava-agro-pet-sub003/api/validators"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/orders"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	pkgerrors "github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/pagination"
)

// AdminOrderList serves the full order ledger for back-office review.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAll(r.Context(), strings.TrimSpace(r.URL.Query().Get("cursor")), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderUpdateStatus advances an order through its fulfillment lifecycle.
func AdminOrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target := enums.OrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))
		order, err := svc.Transition(r.Context(), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
