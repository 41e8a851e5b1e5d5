package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the wishlist repository to a gorm DB.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Add inserts a wishlist entry, ignoring duplicates.
func (r *Repository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (user_id, product_id) VALUES (?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID).
		Error
	if err != nil {
		return fmt.Errorf("adding wishlist item: %w", err)
	}
	return nil
}

// Remove deletes the entry if it exists.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).
		Error
	if err != nil {
		return fmt.Errorf("removing wishlist item: %w", err)
	}
	return nil
}

// ListProducts returns the user's favorited products, newest first.
func (r *Repository) ListProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select("p.*").
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("wi.user_id = ? AND p.is_active = ?", userID, true).
		Order("wi.created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing wishlist: %w", err)
	}
	return rows, nil
}
