package inventory_test

import (
	"context"
	"testing"
	"time"

	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedger_AdjustCreatesMissingRow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).Delete(&models.Inventory{}).Error)

	now := time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC)
	ledger := inventory.NewLedger(func() time.Time { return now })
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		qty, found, err := ledger.Get(ctx, tx, f.product.ID)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 0, qty)

		got, err := ledger.Adjust(ctx, tx, f.product.ID, 7)
		assert.Equal(t, 7, got)
		return err
	})
	require.NoError(t, err)

	var inv models.Inventory
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).First(&inv).Error)
	assert.Equal(t, 7, inv.Quantity)
	assert.True(t, now.Equal(inv.LastUpdated))
}

func TestLedger_AdjustNegativeOnMissingRowStartsAtZero(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).Delete(&models.Inventory{}).Error)
	ledger := inventory.NewLedger(nil)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		got, err := ledger.Adjust(ctx, tx, f.product.ID, -5)
		assert.Equal(t, 0, got)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t))
}

func TestLedger_AdjustHasNoNegativeGuard(t *testing.T) {
	f := newFixture(t)
	ledger := inventory.NewLedger(nil)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		got, err := ledger.Adjust(ctx, tx, f.product.ID, -3)
		assert.Equal(t, -3, got)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, -3, f.stock(t))
}

func TestLedger_RolledBackWithTransaction(t *testing.T) {
	f := newFixture(t)
	ledger := inventory.NewLedger(nil)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Adjust(ctx, tx, f.product.ID, 12)
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, f.stock(t))
}
