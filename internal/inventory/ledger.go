// Package inventory keeps the per-product quantity ledger and the purchase and
// sale records that move it. Each record change and its ledger adjustment
// commit in the same database transaction.
package inventory

import (
	"context"
	"errors"
	"math"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the only code that writes Inventory.Quantity. Its methods run on
// the caller's transaction.
type Ledger struct {
	now func() time.Time
}

func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// lockRow loads the product's inventory row FOR UPDATE. found is false when
// the product has no row yet.
func (l *Ledger) lockRow(ctx context.Context, tx *gorm.DB, productID uint) (inv models.Inventory, found bool, err error) {
	err = tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Inventory{}, false, nil
	}
	if err != nil {
		return models.Inventory{}, false, err
	}
	return inv, true, nil
}

// Get returns the quantity on hand. A product without a row has 0.
func (l *Ledger) Get(ctx context.Context, tx *gorm.DB, productID uint) (int, bool, error) {
	inv, found, err := l.lockRow(ctx, tx, productID)
	if err != nil {
		return 0, false, err
	}
	return inv.Quantity, found, nil
}

// Adjust applies quantity += delta and refreshes the timestamp. A missing row
// is created with max(delta, 0). There is no negative guard here, but a delta
// that would overflow the stored quantity is rejected with ErrValidation.
func (l *Ledger) Adjust(ctx context.Context, tx *gorm.DB, productID uint, delta int) (int, error) {
	inv, found, err := l.lockRow(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	if !found {
		inv = models.Inventory{
			ProductID:   productID,
			Quantity:    max(delta, 0),
			LastUpdated: l.now(),
		}
		if err := tx.WithContext(ctx).Omit(clause.Associations).Create(&inv).Error; err != nil {
			return 0, err
		}
		return inv.Quantity, nil
	}

	if (delta > 0 && inv.Quantity > math.MaxInt-delta) || (delta < 0 && inv.Quantity < math.MinInt-delta) {
		return 0, apperr.Validation("quantity would overflow stock of product %d", productID)
	}
	inv.Quantity += delta
	err = tx.WithContext(ctx).Model(&models.Inventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"quantity":     inv.Quantity,
			"last_updated": l.now(),
		}).Error
	if err != nil {
		return 0, err
	}
	return inv.Quantity, nil
}
