package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
)

// GormStorage persists cart snapshots as one row per owner scope in the
// carts table, items serialized into the JSON column.
type GormStorage struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewGormStorage builds the relational snapshot adapter.
func NewGormStorage(db *gorm.DB, logg *logger.Logger) (*GormStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &GormStorage{db: db, logg: logg}, nil
}

// Load reads the scope's row. A missing row yields (nil, nil); a row whose
// item list cannot be interpreted is discarded the same way.
func (g *GormStorage) Load(ctx context.Context, scope string) (*Snapshot, error) {
	var record models.CartSnapshot
	err := g.db.WithContext(ctx).Where("scope = ?", scope).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart row: %w", err)
	}

	snap := Snapshot{Lines: make([]Line, 0, len(record.Items))}
	for _, item := range record.Items {
		if item.Key == "" || item.Quantity < 1 {
			g.logg.Warn(ctx, fmt.Sprintf("corrupt cart row for scope %s, discarding", scope))
			return nil, nil
		}
		snap.Lines = append(snap.Lines, Line{
			Key:        item.Key,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			PromoPrice: item.PromoPrice,
			Quantity:   item.Quantity,
			Image:      item.Image,
		})
	}
	snap.Recompute()
	return &snap, nil
}

// Save upserts the complete snapshot into the scope's row.
func (g *GormStorage) Save(ctx context.Context, scope string, snap Snapshot) error {
	items := make([]models.CartSnapshotItem, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, models.CartSnapshotItem{
			Key:        line.Key,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			PromoPrice: line.PromoPrice,
			Quantity:   line.Quantity,
			Image:      line.Image,
		})
	}

	record := models.CartSnapshot{
		Scope:     scope,
		Items:     items,
		Total:     snap.Total,
		ItemCount: snap.ItemCount,
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "total", "item_count", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("saving cart row: %w", err)
	}
	return nil
}

// Delete removes the scope's row. Deleting an absent row is not an error.
func (g *GormStorage) Delete(ctx context.Context, scope string) error {
	err := g.db.WithContext(ctx).Where("scope = ?", scope).Delete(&models.CartSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("deleting cart row: %w", err)
	}
	return nil
}
