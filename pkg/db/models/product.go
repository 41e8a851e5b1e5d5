package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are stored as numeric(10,2) in BRL;
// PromoPrice, when set, is the effective storefront price.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description string           `gorm:"column:description;not null;default:''"`
	Category    string           `gorm:"column:category;not null"`
	Brand       *string          `gorm:"column:brand"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	PromoPrice  *decimal.Decimal `gorm:"column:promo_price;type:numeric(10,2)"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	Image       *string          `gorm:"column:image"`
	Tags        pq.StringArray   `gorm:"column:tags;type:text[]"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the promotional price when present, else the
// regular price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}
