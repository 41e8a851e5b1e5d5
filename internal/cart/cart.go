package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
)

// Line is one distinct product entry in a cart. Quantity is always >= 1; a
// line whose quantity drops below 1 is removed, never stored at zero.
type Line struct {
	Key        string           `json:"key"`
	Name       string           `json:"name"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	PromoPrice *decimal.Decimal `json:"promo_price,omitempty"`
	Quantity   int              `json:"quantity"`
	Image      string           `json:"image,omitempty"`
}

// EffectivePrice is the promotional price when present, else the unit price.
func (l Line) EffectivePrice() decimal.Decimal {
	if l.PromoPrice != nil {
		return *l.PromoPrice
	}
	return l.UnitPrice
}

// Subtotal is the effective price multiplied by quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Item is the input payload for adding a product to a cart.
type Item struct {
	Key        string
	Name       string
	UnitPrice  decimal.Decimal
	PromoPrice *decimal.Decimal
	Image      string
}

func (i Item) validate() error {
	if strings.TrimSpace(i.Key) == "" {
		return errors.New(errors.CodeValidation, "line key is required")
	}
	if !i.UnitPrice.IsPositive() {
		return errors.New(errors.CodeValidation, "unit price must be positive")
	}
	if i.PromoPrice != nil && !i.PromoPrice.IsPositive() {
		return errors.New(errors.CodeValidation, "promotional price must be positive")
	}
	return nil
}

// LineKey builds the canonical cart line identity: the product id alone, or
// product and variant joined with a colon when a variant is selected.
func LineKey(productID, variantID string) string {
	productID = strings.TrimSpace(productID)
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return productID
	}
	return productID + ":" + variantID
}

// Snapshot is the complete cart state at a point in time. Total and ItemCount
// are derived from Lines and recomputed on every mutation; they are never
// patched incrementally.
type Snapshot struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Recompute rebuilds Total and ItemCount from the line list.
func (s *Snapshot) Recompute() {
	total := decimal.Zero
	count := 0
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
		count += line.Quantity
	}
	s.Total = total
	s.ItemCount = count
}

// Clone returns a deep copy so callers cannot mutate store-held state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Total:     s.Total,
		ItemCount: s.ItemCount,
	}
	if len(s.Lines) > 0 {
		out.Lines = make([]Line, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	return out
}

// IsEmpty reports whether the snapshot holds no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
