package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a customer to a favorited product.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:wishlist_user_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:wishlist_user_product_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
