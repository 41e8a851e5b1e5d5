package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
)

// ProductDTO is the storefront projection of a catalog entry.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Brand          *string          `json:"brand,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	PromoPrice     *decimal.Decimal `json:"promo_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	Stock          int              `json:"stock"`
	Image          *string          `json:"image,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ProductPageDTO is one cursor page of products.
type ProductPageDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// CreateProductInput captures the admin payload for a new catalog entry.
type CreateProductInput struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Brand       *string
	Price       decimal.Decimal
	PromoPrice  *decimal.Decimal
	Stock       int
	Image       *string
	Tags        []string
}

// UpdateProductInput carries a partial admin update; nil fields are left as is.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Brand       *string
	Price       *decimal.Decimal
	PromoPrice  *decimal.Decimal
	ClearPromo  bool
	Image       *string
	Tags        []string
	IsActive    *bool
}

// ListParams filters the storefront product listing.
type ListParams struct {
	Category string
	Cursor   string
	Limit    int
}

// ToDTO converts a catalog row into its storefront projection.
func ToDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       p.Category,
		Brand:          p.Brand,
		Price:          p.Price,
		PromoPrice:     p.PromoPrice,
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		Image:          p.Image,
		Tags:           p.Tags,
		CreatedAt:      p.CreatedAt,
	}
}
