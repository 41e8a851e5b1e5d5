package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/pagination"
)

type repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursorToken string, limit int) ([]models.Order, *pagination.Cursor, error)
	ListAll(ctx context.Context, cursorToken string, limit int) ([]models.Order, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, canceledAt *time.Time) error
}

// Service exposes order listing and the admin status workflow.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrderPageDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
	ListAll(ctx context.Context, cursor string, limit int) (OrderPageDTO, error)
	Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (OrderDTO, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService builds the order service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ListForUser returns the customer's own orders.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrderPageDTO, error) {
	if userID == uuid.Nil {
		return OrderPageDTO{}, errors.New(errors.CodeValidation, "user id is required")
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return OrderPageDTO{}, err
	}
	return toPage(rows, next), nil
}

// GetForUser fetches one order, refusing access to other customers' orders.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if order.UserID != userID {
		// hide the order's existence from other customers
		return OrderDTO{}, errors.New(errors.CodeNotFound, "order not found")
	}
	return toDTO(*order), nil
}

// ListAll returns every order for the admin panel.
func (s *service) ListAll(ctx context.Context, cursor string, limit int) (OrderPageDTO, error) {
	rows, next, err := s.repo.ListAll(ctx, cursor, limit)
	if err != nil {
		return OrderPageDTO{}, err
	}
	return toPage(rows, next), nil
}

// Transition moves an order along the fulfillment workflow.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (OrderDTO, error) {
	if !target.IsValid() {
		return OrderDTO{}, errors.New(errors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if !order.Status.CanTransitionTo(target) {
		return OrderDTO{}, errors.New(errors.CodeConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
	}

	var canceledAt *time.Time
	if target == enums.OrderStatusCanceled {
		now := s.now()
		canceledAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, orderID, target, canceledAt); err != nil {
		return OrderDTO{}, err
	}

	order.Status = target
	order.CanceledAt = canceledAt
	return toDTO(*order), nil
}

func toPage(rows []models.Order, next *pagination.Cursor) OrderPageDTO {
	page := OrderPageDTO{Orders: make([]OrderDTO, 0, len(rows))}
	for _, row := range rows {
		page.Orders = append(page.Orders, toDTO(row))
	}
	if next != nil {
		token := next.Encode()
		page.NextCursor = &token
	}
	return page
}
