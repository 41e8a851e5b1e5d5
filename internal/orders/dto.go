package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
)

// OrderItemDTO is one immutable line of a placed order.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	LineKey   string          `json:"line_key"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the order projection returned to customers and admins.
type OrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	Status     enums.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	ItemCount  int               `json:"item_count"`
	Items      []OrderItemDTO    `json:"items,omitempty"`
	PlacedAt   time.Time         `json:"placed_at"`
	CanceledAt *time.Time        `json:"canceled_at,omitempty"`
}

// OrderPageDTO is one cursor page of orders.
type OrderPageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func toDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		ItemCount:  order.ItemCount,
		PlacedAt:   order.PlacedAt,
		CanceledAt: order.CanceledAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID,
			LineKey:   item.LineKey,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return dto
}
