package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartSnapshot is the relational form of a durable cart snapshot: one row per
// owner scope, items as a JSON document. Total and ItemCount are denormalized
// for admin visibility only; the authoritative values are recomputed from the
// item list on every load.
type CartSnapshot struct {
	Scope     string             `gorm:"column:scope;primaryKey"`
	Items     []CartSnapshotItem `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Total     decimal.Decimal    `gorm:"column:total;type:numeric(10,2);not null;default:0"`
	ItemCount int                `gorm:"column:item_count;not null;default:0"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table name used by the storefront.
func (CartSnapshot) TableName() string {
	return "carts"
}

// CartSnapshotItem mirrors one cart line inside the JSON items column.
type CartSnapshotItem struct {
	Key        string           `json:"key"`
	Name       string           `json:"name"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	PromoPrice *decimal.Decimal `json:"promo_price,omitempty"`
	Quantity   int              `json:"quantity"`
	Image      string           `json:"image,omitempty"`
}
