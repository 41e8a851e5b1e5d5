package orders

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/pagination"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the order repository to a gorm DB.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// WithTx returns a repository clone bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts an order with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("fetching order: %w", err)
	}
	return &order, nil
}

// ListByUser returns a cursor page of the customer's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursorToken string, limit int) ([]models.Order, *pagination.Cursor, error) {
	return r.list(ctx, cursorToken, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

// ListAll returns a cursor page of every order for the admin panel.
func (r *Repository) ListAll(ctx context.Context, cursorToken string, limit int) ([]models.Order, *pagination.Cursor, error) {
	return r.list(ctx, cursorToken, limit, nil)
}

func (r *Repository) list(ctx context.Context, cursorToken string, limit int, scope func(*gorm.DB) *gorm.DB) ([]models.Order, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(cursorToken)
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if scope != nil {
		query = scope(query)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("listing orders: %w", err)
	}

	page, hasNext := pagination.TrimPage(rows, limit)
	if !hasNext {
		return page, nil, nil
	}
	last := page[len(page)-1]
	return page, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

// UpdateStatus writes the status columns without touching order items.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, canceledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if canceledAt != nil {
		updates["canceled_at"] = canceledAt
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("updating order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}
