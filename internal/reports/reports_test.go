package reports_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/catalog"
	"go-shop-manager/internal/database/dbtest"
	"go-shop-manager/internal/finance"
	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/reports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

type shop struct {
	ctx      context.Context
	catalog  *catalog.Store
	recorder *inventory.Recorder
	journal  *finance.Journal
	engine   *reports.Engine
	supplier *models.Supplier
}

func newShop(t *testing.T) *shop {
	t.Helper()
	db := dbtest.New(t)
	clock := func() time.Time { return now }

	s := &shop{
		ctx:      auth.WithCaller(context.Background(), auth.Caller{UserID: 1, Role: models.RoleAdmin}),
		catalog:  catalog.NewStore(db, "US"),
		recorder: inventory.NewRecorder(db, inventory.WithClock(clock)),
		journal:  finance.NewJournal(db, clock),
		engine:   reports.NewEngine(db, reports.WithLocation(time.UTC), reports.WithLowStockThreshold(5)),
	}

	supplier, err := s.catalog.CreateSupplier(s.ctx, catalog.SupplierInput{
		Name:    "Main Supplier",
		Contact: "Bo",
		Phone:   "+1 650 253 0000",
		Address: "2 Dock St",
	})
	require.NoError(t, err)
	s.supplier = supplier
	return s
}

func (s *shop) product(t *testing.T, name, category string, price, cost int64) *models.Product {
	t.Helper()
	p, err := s.catalog.CreateProduct(s.ctx, catalog.ProductInput{
		Name:      name,
		Category:  category,
		Price:     decimal.NewFromInt(price),
		CostPrice: decimal.NewFromInt(cost),
	})
	require.NoError(t, err)
	return p
}

func (s *shop) buy(t *testing.T, p *models.Product, qty int, at time.Time) {
	t.Helper()
	_, err := s.recorder.RecordPurchase(s.ctx, inventory.PurchaseInput{
		ProductID: p.ID, SupplierID: s.supplier.ID, Quantity: qty, Date: &at,
	})
	require.NoError(t, err)
}

func (s *shop) sell(t *testing.T, p *models.Product, qty int, at time.Time) {
	t.Helper()
	_, err := s.recorder.RecordSale(s.ctx, inventory.SaleInput{ProductID: p.ID, Quantity: qty, Date: &at})
	require.NoError(t, err)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 10, 0, 0, 0, time.UTC)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

func TestMonthlySummary_EmptyMonthIsAllZero(t *testing.T) {
	s := newShop(t)

	m, err := s.engine.MonthlySummary(s.ctx, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2024-07", m.Month)
	for _, v := range []decimal.Decimal{m.Sales, m.Purchases, m.Expenses, m.Income, m.Profit} {
		assert.True(t, v.IsZero())
	}
}

func TestMonthlySummary_TotalsOnlyThatMonth(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)

	// GIVEN activity in February and March
	s.buy(t, tea, 10, day(time.February, 20))
	s.sell(t, tea, 2, day(time.February, 21))
	s.buy(t, tea, 10, day(time.March, 2))
	s.sell(t, tea, 4, day(time.March, 3))
	_, err := s.journal.CreateExpense(s.ctx, finance.EntryInput{Description: "Rent", Amount: decimal.NewFromInt(30), Category: "Rent"})
	require.NoError(t, err)
	_, err = s.journal.CreateIncome(s.ctx, finance.EntryInput{Description: "Refund", Amount: decimal.NewFromInt(5), Category: "Other"})
	require.NoError(t, err)

	// WHEN summarising March
	m, err := s.engine.MonthlySummary(s.ctx, now)
	require.NoError(t, err)

	// THEN only March records count
	assertMoney(t, "100", m.Sales)
	assertMoney(t, "100", m.Purchases)
	assertMoney(t, "30", m.Expenses)
	assertMoney(t, "5", m.Income)
	assertMoney(t, "-25", m.Profit)
}

func TestSalesBetween(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.buy(t, tea, 10, day(time.March, 1))
	s.sell(t, tea, 1, day(time.March, 2))
	s.sell(t, tea, 2, day(time.March, 5))
	s.sell(t, tea, 3, day(time.March, 9))

	totals, err := s.engine.SalesBetween(s.ctx, day(time.March, 2), day(time.March, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalCount)
	assertMoney(t, "75", totals.TotalRevenue)
}

// =============================================================================
// SALES REPORT
// =============================================================================

func TestSalesReport_ZeroFillsDaysAndMonths(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.buy(t, tea, 20, day(time.January, 2))
	s.sell(t, tea, 1, day(time.January, 10))
	s.sell(t, tea, 4, day(time.March, 3))

	r, err := s.engine.SalesReport(s.ctx, now)
	require.NoError(t, err)

	require.Len(t, r.Daily, 30)
	assert.Equal(t, "2025-02-14", r.Daily[0].Date)
	assert.Equal(t, "2025-03-15", r.Daily[29].Date)
	for _, d := range r.Daily {
		if d.Date == "2025-03-03" {
			assertMoney(t, "100", d.TotalAmount)
		} else {
			assert.True(t, d.TotalAmount.IsZero(), d.Date)
		}
	}

	require.Len(t, r.Monthly, 3)
	assert.Equal(t, "2025-01", r.Monthly[0].Month)
	assertMoney(t, "25", r.Monthly[0].TotalAmount)
	assert.Equal(t, "2025-02", r.Monthly[1].Month)
	assert.True(t, r.Monthly[1].TotalAmount.IsZero())
	assertMoney(t, "100", r.Monthly[2].TotalAmount)
}

func TestSalesReport_Empty(t *testing.T) {
	s := newShop(t)

	r, err := s.engine.SalesReport(s.ctx, now)
	require.NoError(t, err)
	assert.Len(t, r.Daily, 30)
	assert.Empty(t, r.Monthly)
	assert.NotNil(t, r.TopProducts)
	assert.Empty(t, r.TopProducts)
}

func TestSalesReport_TopTenByAmount(t *testing.T) {
	s := newShop(t)
	for i := 1; i <= 12; i++ {
		p := s.product(t, fmt.Sprintf("Item %02d", i), "Misc", int64(i), 1)
		s.buy(t, p, 5, day(time.March, 1))
		s.sell(t, p, 2, day(time.March, 2))
	}

	r, err := s.engine.SalesReport(s.ctx, now)
	require.NoError(t, err)

	require.Len(t, r.TopProducts, 10)
	assert.Equal(t, "Item 12", r.TopProducts[0].Name)
	assert.Equal(t, 2, r.TopProducts[0].TotalQuantity)
	assertMoney(t, "24", r.TopProducts[0].TotalAmount)
	assert.Equal(t, "Item 03", r.TopProducts[9].Name)
}

// =============================================================================
// INVENTORY & VALUATION
// =============================================================================

func TestInventoryReport(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	cola := s.product(t, "Cola", "Drinks", 3, 1)
	soap := s.product(t, "Soap", "Home", 8, 5)
	s.buy(t, tea, 4, day(time.March, 1))
	s.buy(t, cola, 20, day(time.March, 1))
	s.buy(t, soap, 6, day(time.March, 1))

	r, err := s.engine.InventoryReport(s.ctx)
	require.NoError(t, err)

	require.Len(t, r.Items, 3)
	assert.Equal(t, "Tea", r.Items[0].Name, "lowest quantity first")
	assert.Equal(t, "Cola", r.Items[2].Name)
	assertMoney(t, "208", r.TotalValue) // 100 + 60 + 48

	require.Len(t, r.Categories, 2)
	assert.Equal(t, "Drinks", r.Categories[0].Category)
	assert.Equal(t, 24, r.Categories[0].TotalQuantity)
	assertMoney(t, "160", r.Categories[0].TotalValue)
	assertMoney(t, "48", r.Categories[1].TotalValue)

	require.Len(t, r.LowStock, 1)
	assert.Equal(t, "Tea", r.LowStock[0].Name)
}

func TestValuation_AtCostGroupedByCategory(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	soap := s.product(t, "Soap", "Home", 8, 5)
	s.buy(t, tea, 4, day(time.March, 1))
	s.buy(t, soap, 6, day(time.March, 1))
	s.sell(t, soap, 1, day(time.March, 2))

	v, err := s.engine.Valuation(s.ctx)
	require.NoError(t, err)

	require.Len(t, v.Categories, 2)
	assert.Equal(t, "Drinks", v.Categories[0].CategoryName)
	assertMoney(t, "40", v.Categories[0].Subtotal)
	require.Len(t, v.Categories[1].Items, 1)
	assert.Equal(t, 5, v.Categories[1].Items[0].Quantity)
	assertMoney(t, "25", v.Categories[1].Items[0].TotalCost)
	assertMoney(t, "65", v.GrandTotal)
}

// =============================================================================
// FINANCIAL & DASHBOARD
// =============================================================================

func TestFinancialReport(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.buy(t, tea, 10, day(time.March, 2))
	s.sell(t, tea, 6, day(time.March, 3))

	for _, e := range []finance.EntryInput{
		{Description: "Rent", Amount: decimal.NewFromInt(20), Category: "Rent"},
		{Description: "Power", Amount: decimal.NewFromInt(5), Category: "Utilities"},
		{Description: "Water", Amount: decimal.NewFromInt(3), Category: "Utilities"},
	} {
		_, err := s.journal.CreateExpense(s.ctx, e)
		require.NoError(t, err)
	}
	_, err := s.journal.CreateIncome(s.ctx, finance.EntryInput{Description: "Interest", Amount: decimal.NewFromInt(2), Category: "Bank"})
	require.NoError(t, err)

	r, err := s.engine.FinancialReport(s.ctx, now)
	require.NoError(t, err)

	assert.Equal(t, "2025-03", r.Month)
	assertMoney(t, "150", r.Sales)
	assertMoney(t, "100", r.PurchaseCost)
	assertMoney(t, "28", r.Expenses)
	assertMoney(t, "2", r.OtherIncome)
	assertMoney(t, "24", r.Profit)

	require.Len(t, r.ExpenseCategories, 2)
	assert.Equal(t, "Rent", r.ExpenseCategories[0].Category)
	assertMoney(t, "8", r.ExpenseCategories[1].Total)
	require.Len(t, r.IncomeCategories, 1)

	assertMoney(t, "40", r.InventoryValue)
	assertMoney(t, "64", r.TotalAssets)
	assert.True(t, r.Liabilities.IsZero())
	assertMoney(t, "24", r.Equity)
	assertMoney(t, "152", r.CashIn)
	assertMoney(t, "128", r.CashOut)
	assertMoney(t, "24", r.NetCashFlow)
}

func TestDashboard(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.product(t, "Cola", "Drinks", 3, 1)
	s.buy(t, tea, 10, day(time.March, 2))
	s.sell(t, tea, 1, day(time.March, 3))
	s.sell(t, tea, 2, now)
	_, err := s.journal.CreateIncome(s.ctx, finance.EntryInput{Description: "Interest", Amount: decimal.NewFromInt(9), Category: "Bank"})
	require.NoError(t, err)

	d, err := s.engine.Dashboard(s.ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.ProductCount)
	assertMoney(t, "50", d.TodaySales)
	// income is not part of dashboard profit
	assertMoney(t, "-25", d.MonthProfit)
	assert.Equal(t, int64(1), d.LowStockCount, "Cola has nothing on hand")
}

// =============================================================================
// EXPORTS
// =============================================================================

func TestWriteInventoryXLSX(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.buy(t, tea, 4, day(time.March, 1))

	r, err := s.engine.InventoryReport(s.ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reports.WriteInventoryXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Inventory", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Product", header)
	name, err := f.GetCellValue("Inventory", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Tea", name)
	total, err := f.GetCellValue("Inventory", "E3")
	require.NoError(t, err)
	assert.Equal(t, "100", total)
}

func TestWriteSalesXLSX(t *testing.T) {
	s := newShop(t)

	r, err := s.engine.SalesReport(s.ctx, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reports.WriteSalesXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	assert.Len(t, rows, 31)
}

func TestWriteInventoryPDF(t *testing.T) {
	s := newShop(t)
	tea := s.product(t, "Tea", "Drinks", 25, 10)
	s.buy(t, tea, 4, day(time.March, 1))

	r, err := s.engine.InventoryReport(s.ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reports.WriteInventoryPDF(&buf, r, now))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
