package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/internal/cart"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

// Result summarizes the order created from the cart snapshot.
type Result struct {
	OrderID   uuid.UUID         `json:"order_id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"item_count"`
	PlacedAt  time.Time         `json:"placed_at"`
}

type cartProvider interface {
	Get(ctx context.Context, scope string) (*cart.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProductStore is the catalog surface checkout needs inside its transaction.
type ProductStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// OrderWriter persists the order assembled from the cart snapshot.
type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

// ServiceParams bundles the checkout dependencies. The repo factories bind
// the product and order repositories to the checkout transaction.
type ServiceParams struct {
	Carts    cartProvider
	Tx       txRunner
	Products func(tx *gorm.DB) ProductStore
	Orders   func(tx *gorm.DB) OrderWriter
	Logger   *logger.Logger
}

// Service turns a cart snapshot into a pending order.
type Service interface {
	Initiate(ctx context.Context, userID uuid.UUID) (*Result, error)
}

type service struct {
	carts    cartProvider
	tx       txRunner
	products func(tx *gorm.DB) ProductStore
	orders   func(tx *gorm.DB) OrderWriter
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart provider is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repo factory is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repo factory is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		carts:    params.Carts,
		tx:       params.Tx,
		products: params.Products,
		orders:   params.Orders,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Initiate reads the cart snapshot, writes the order and stock decrements in
// one transaction, then clears the cart. The snapshot's prices are the prices
// sold at; catalog edits after this point do not affect the order.
func (s *service) Initiate(ctx context.Context, userID uuid.UUID) (*Result, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "user id is required")
	}

	store, err := s.carts.Get(ctx, userID.String())
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "resolving cart")
	}
	snap := store.Snapshot()
	if snap.IsEmpty() {
		return nil, errors.New(errors.CodeValidation, "cart is empty")
	}

	placedAt := s.now()
	order := models.Order{
		UserID:    userID,
		Status:    enums.OrderStatusPending,
		Total:     snap.Total,
		ItemCount: snap.ItemCount,
		PlacedAt:  placedAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products(tx)
		for _, line := range snap.Lines {
			productID, err := productIDFromLineKey(line.Key)
			if err != nil {
				return err
			}
			product, err := productRepo.GetByID(ctx, productID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return errors.New(errors.CodeConflict,
					fmt.Sprintf("product %s is no longer available", product.Name))
			}
			if err := productRepo.AdjustStock(ctx, productID, -line.Quantity); err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: productID,
				LineKey:   line.Key,
				Name:      line.Name,
				UnitPrice: line.EffectivePrice(),
				Quantity:  line.Quantity,
				Subtotal:  line.Subtotal(),
			})
		}
		return s.orders(tx).Create(ctx, &order)
	})
	if err != nil {
		return nil, err
	}

	if _, err := store.Clear(ctx); err != nil {
		// the order exists; an unclearable cart is a nuisance, not a failure
		s.logg.Warn(ctx, fmt.Sprintf("clearing cart after checkout failed for user %s: %v", userID, err))
	}

	return &Result{
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.Total,
		ItemCount: order.ItemCount,
		PlacedAt:  placedAt,
	}, nil
}

// productIDFromLineKey extracts the product id from the canonical line key,
// which is either the product id alone or product and variant joined by a
// colon.
func productIDFromLineKey(key string) (uuid.UUID, error) {
	idPart, _, _ := strings.Cut(key, ":")
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("malformed cart line key %q", key))
	}
	return id, nil
}
