package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
)

// Order captures a checkout-initiated purchase snapshot.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Total      decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	ItemCount  int               `gorm:"column:item_count;not null"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt   time.Time         `gorm:"column:placed_at;not null"`
	CanceledAt *time.Time        `gorm:"column:canceled_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the immutable per-line snapshot taken from the cart at
// checkout initiation.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	LineKey   string          `gorm:"column:line_key;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
