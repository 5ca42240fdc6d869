package inventory_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/catalog"
	"go-shop-manager/internal/database/dbtest"
	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	db       *gorm.DB
	recorder *inventory.Recorder
	catalog  *catalog.Store
	ctx      context.Context
	product  *models.Product
	supplier *models.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	store := catalog.NewStore(db, "US")
	ctx := auth.WithCaller(context.Background(), auth.Caller{UserID: 7, Role: models.RoleUser})

	product, err := store.CreateProduct(ctx, catalog.ProductInput{
		Name:      "Green Tea",
		Category:  "Drinks",
		Price:     decimal.NewFromInt(25),
		CostPrice: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	supplier, err := store.CreateSupplier(ctx, catalog.SupplierInput{
		Name:    "Leaf Co",
		Contact: "Ann",
		Phone:   "+1 650 253 0000",
		Address: "1 Hill Rd",
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		recorder: inventory.NewRecorder(db),
		catalog:  store,
		ctx:      ctx,
		product:  product,
		supplier: supplier,
	}
}

func (f *fixture) purchase(t *testing.T, qty int) *models.Purchase {
	t.Helper()
	p, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID:  f.product.ID,
		SupplierID: f.supplier.ID,
		Quantity:   qty,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) sale(t *testing.T, qty int) *models.Sale {
	t.Helper()
	s, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{
		ProductID: f.product.ID,
		Quantity:  qty,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	qty, err := f.recorder.Quantity(f.ctx, f.product.ID)
	require.NoError(t, err)
	return qty
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

// =============================================================================
// WORKED EXAMPLE
// =============================================================================

func TestRecorder_PurchaseSaleAndReversals(t *testing.T) {
	f := newFixture(t)

	p := f.purchase(t, 50)
	assert.Equal(t, 50, f.stock(t))
	assert.True(t, decimal.NewFromInt(500).Equal(p.TotalCost), "total cost = 10 x 50")
	require.NotNil(t, p.SupplierID)
	assert.Equal(t, f.supplier.ID, *p.SupplierID)
	assert.Equal(t, uint(7), p.UserID)

	s := f.sale(t, 20)
	assert.Equal(t, 30, f.stock(t))
	assert.True(t, decimal.NewFromInt(500).Equal(s.TotalAmount), "total amount = 25 x 20")

	require.NoError(t, f.recorder.DeleteSale(f.ctx, s.ID))
	assert.Equal(t, 50, f.stock(t))

	require.NoError(t, f.recorder.DeletePurchase(f.ctx, p.ID))
	assert.Equal(t, 0, f.stock(t))

	assert.Zero(t, f.count(t, &models.Purchase{}))
	assert.Zero(t, f.count(t, &models.Sale{}))
}

// =============================================================================
// SALE PATH
// =============================================================================

func TestRecordSale_InsufficientStock_NoMutation(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, 5)

	_, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: f.product.ID, Quantity: 6})

	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t))
	assert.Zero(t, f.count(t, &models.Sale{}))
}

func TestRecordSale_MissingInventoryRowCountsAsZero(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).Delete(&models.Inventory{}).Error)

	_, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: f.product.ID, Quantity: 1})

	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Zero(t, f.count(t, &models.Inventory{}), "a failed sale must not create the row")
}

func TestRecordSale_ExactStockAllowed(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, 3)

	f.sale(t, 3)
	assert.Equal(t, 0, f.stock(t))
}

func TestDeleteSale_AlwaysRestoresEvenAboveHistoricalMax(t *testing.T) {
	// GIVEN: 10 bought, all 10 sold, the purchase deleted (skipped: ledger 0 < 10),
	//        then 10 bought again
	// WHEN: the sale is deleted
	// THEN: the ledger goes to 20, above anything it held before
	f := newFixture(t)
	p := f.purchase(t, 10)
	s := f.sale(t, 10)
	require.NoError(t, f.recorder.DeletePurchase(f.ctx, p.ID))
	assert.Equal(t, 0, f.stock(t))
	f.purchase(t, 10)

	require.NoError(t, f.recorder.DeleteSale(f.ctx, s.ID))

	assert.Equal(t, 20, f.stock(t))
}

func TestDeleteSale_RecreatesMissingRow(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, 4)
	s := f.sale(t, 4)
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).Delete(&models.Inventory{}).Error)

	require.NoError(t, f.recorder.DeleteSale(f.ctx, s.ID))

	assert.Equal(t, 4, f.stock(t))
}

func TestDeleteSale_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.recorder.DeleteSale(f.ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// =============================================================================
// PURCHASE PATH
// =============================================================================

func TestDeletePurchase_SkipsReversalWhenLedgerTooLow(t *testing.T) {
	f := newFixture(t)
	p := f.purchase(t, 10)
	f.sale(t, 8)

	err := f.recorder.DeletePurchase(f.ctx, p.ID)

	require.NoError(t, err, "the tolerance is silent")
	assert.Equal(t, 2, f.stock(t), "ledger untouched, never negative")
	assert.Zero(t, f.count(t, &models.Purchase{}), "record deleted anyway")
}

func TestDeletePurchase_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.recorder.DeletePurchase(f.ctx, 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordPurchase_CostFrozenAtCreation(t *testing.T) {
	f := newFixture(t)
	p := f.purchase(t, 3)

	_, err := f.catalog.UpdateProduct(f.ctx, f.product.ID, catalog.ProductInput{
		Name:      f.product.Name,
		Category:  f.product.Category,
		Price:     decimal.NewFromInt(99),
		CostPrice: decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	var stored models.Purchase
	require.NoError(t, f.db.First(&stored, p.ID).Error)
	assert.True(t, decimal.NewFromInt(30).Equal(stored.TotalCost))
}

func TestRecordPurchase_UsesGivenDate(t *testing.T) {
	f := newFixture(t)
	when := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	p, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID:  f.product.ID,
		SupplierID: f.supplier.ID,
		Quantity:   1,
		Date:       &when,
	})
	require.NoError(t, err)
	assert.True(t, when.Equal(p.PurchaseDate))
}

func TestRecordPurchase_DefaultsToClock(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	rec := inventory.NewRecorder(f.db, inventory.WithClock(func() time.Time { return fixed }))

	p, err := rec.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID:  f.product.ID,
		SupplierID: f.supplier.ID,
		Quantity:   2,
	})
	require.NoError(t, err)
	assert.True(t, fixed.Equal(p.PurchaseDate))

	var inv models.Inventory
	require.NoError(t, f.db.Where("product_id = ?", f.product.ID).First(&inv).Error)
	assert.True(t, fixed.Equal(inv.LastUpdated))
}

func TestRecordPurchase_LargeQuantityAccepted(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, 1_000_000)
	assert.Equal(t, 1_000_000, f.stock(t))
}

func TestRecordPurchase_OverflowRejectedAndRolledBack(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, math.MaxInt)

	_, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID:  f.product.ID,
		SupplierID: f.supplier.ID,
		Quantity:   1,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, math.MaxInt, f.stock(t))
	assert.Equal(t, int64(1), f.count(t, &models.Purchase{}))
}

func TestDeleteSale_OverflowRejectedAndRolledBack(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, math.MaxInt)
	s := f.sale(t, 1)
	f.purchase(t, 1)
	require.Equal(t, math.MaxInt, f.stock(t))

	err := f.recorder.DeleteSale(f.ctx, s.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, math.MaxInt, f.stock(t))
	assert.Equal(t, int64(1), f.count(t, &models.Sale{}))
}

// =============================================================================
// VALIDATION AND ERRORS
// =============================================================================

func TestRecorder_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	for _, qty := range []int{0, -1, -50} {
		_, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
			ProductID: f.product.ID, SupplierID: f.supplier.ID, Quantity: qty,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation, "purchase qty %d", qty)

		_, err = f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: f.product.ID, Quantity: qty})
		assert.ErrorIs(t, err, apperr.ErrValidation, "sale qty %d", qty)
	}
	assert.Equal(t, 0, f.stock(t))
}

func TestRecordPurchase_UnknownReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID: 999, SupplierID: f.supplier.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID: f.product.ID, SupplierID: 999, Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 0, f.stock(t))
	assert.Zero(t, f.count(t, &models.Purchase{}))
}

func TestRecordSale_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecorder_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	anon := context.Background()

	_, err := f.recorder.RecordPurchase(anon, inventory.PurchaseInput{
		ProductID: f.product.ID, SupplierID: f.supplier.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.recorder.RecordSale(anon, inventory.SaleInput{ProductID: f.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	assert.ErrorIs(t, f.recorder.DeletePurchase(anon, 1), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, f.recorder.DeleteSale(anon, 1), apperr.ErrUnauthenticated)
}

// =============================================================================
// LEDGER INVARIANT
// =============================================================================

func liveBalance(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var in, out int
	require.NoError(t, db.Model(&models.Purchase{}).Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&in).Error)
	require.NoError(t, db.Model(&models.Sale{}).Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&out).Error)
	return in - out
}

func TestRecorder_LedgerMatchesLiveRecords(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(20251018))

	var purchases []*models.Purchase
	var sales []*models.Sale

	for step := 0; step < 200; step++ {
		switch rng.Intn(4) {
		case 0:
			purchases = append(purchases, f.purchase(t, rng.Intn(20)+1))
		case 1:
			qty := rng.Intn(15) + 1
			s, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: f.product.ID, Quantity: qty})
			if errors.Is(err, apperr.ErrInsufficientStock) {
				continue
			}
			require.NoError(t, err)
			sales = append(sales, s)
		case 2:
			// only delete purchases the ledger can fully cover
			current := f.stock(t)
			for i, p := range purchases {
				if p.Quantity <= current {
					require.NoError(t, f.recorder.DeletePurchase(f.ctx, p.ID))
					purchases = append(purchases[:i], purchases[i+1:]...)
					break
				}
			}
		case 3:
			if len(sales) == 0 {
				continue
			}
			i := rng.Intn(len(sales))
			require.NoError(t, f.recorder.DeleteSale(f.ctx, sales[i].ID))
			sales = append(sales[:i], sales[i+1:]...)
		}

		require.Equal(t, liveBalance(t, f.db, f.product.ID), f.stock(t), "step %d", step)
		require.GreaterOrEqual(t, f.stock(t), 0)
	}
}

func TestRecordSale_ConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.recorder.RecordSale(f.ctx, inventory.SaleInput{ProductID: f.product.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperr.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)
	assert.Equal(t, 0, f.stock(t))
	assert.Equal(t, int64(10), f.count(t, &models.Sale{}))
}

// =============================================================================
// LISTING
// =============================================================================

func TestRecorder_ListsNewestFirst(t *testing.T) {
	f := newFixture(t)
	older := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)

	_, err := f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID: f.product.ID, SupplierID: f.supplier.ID, Quantity: 5, Date: &older,
	})
	require.NoError(t, err)
	_, err = f.recorder.RecordPurchase(f.ctx, inventory.PurchaseInput{
		ProductID: f.product.ID, SupplierID: f.supplier.ID, Quantity: 6, Date: &newer,
	})
	require.NoError(t, err)

	purchases, err := f.recorder.ListPurchases(f.ctx)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, 6, purchases[0].Quantity)
	assert.Equal(t, "Green Tea", purchases[0].Product.Name)
	require.NotNil(t, purchases[0].Supplier)
	assert.Equal(t, "Leaf Co", purchases[0].Supplier.Name)

	f.sale(t, 2)
	sales, err := f.recorder.ListSales(f.ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Green Tea", sales[0].Product.Name)

	rows, err := f.recorder.ListInventory(f.ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 9, rows[0].Quantity)
}
