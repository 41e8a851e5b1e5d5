package products

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/pagination"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the catalog repository to a gorm DB.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// WithTx returns a repository clone bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a catalog entry.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if err != nil {
		if db.IsUniqueViolation(err, "products_slug_key") {
			return errors.New(errors.CodeConflict, "product slug already exists")
		}
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// GetByID fetches a product regardless of active state.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("fetching product: %w", err)
	}
	return &product, nil
}

// GetBySlug fetches an active product by its storefront slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&product).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("fetching product by slug: %w", err)
	}
	return &product, nil
}

// List returns a cursor page of active products, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Product, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("listing products: %w", err)
	}

	page, hasNext := pagination.TrimPage(rows, params.Limit)
	if !hasNext {
		return page, nil, nil
	}
	last := page[len(page)-1]
	return page, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

// Save persists an already-loaded product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("saving product: %w", err)
	}
	return nil
}

// Delete removes a catalog entry.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("deleting product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	return nil
}

// AdjustStock applies a relative stock change, refusing to go negative.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("adjusting stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeConflict, "insufficient stock")
	}
	return nil
}
