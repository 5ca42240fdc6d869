// Package reports answers the read-only aggregate questions: dashboard
// figures, sales trends, stock valuation and the monthly financial picture.
// Empty data always yields zero values, never an error.
package reports

import (
	"context"
	"fmt"
	"time"

	"go-shop-manager/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

type Engine struct {
	db       *gorm.DB
	lowStock int
	loc      *time.Location
}

type Option func(*Engine)

// WithLocation sets the zone day and month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithLowStockThreshold marks quantities below n as low stock.
func WithLowStockThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lowStock = n
		}
	}
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{db: db, lowStock: 10, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) startOfDay(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

func (e *Engine) startOfMonth(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, e.loc)
}

// sum returns COALESCE(SUM(column), 0) over [start, end) of dateColumn.
// Timestamps are stored in UTC, so bounds are converted before comparing.
func (e *Engine) sum(ctx context.Context, model any, column, dateColumn string, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := e.db.WithContext(ctx).Model(model).
		Where(dateColumn+" >= ? AND "+dateColumn+" < ?", start.UTC(), end.UTC()).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0) AS total", column)).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// --- Range totals ---

// SalesTotals holds revenue and order count for a date range
type SalesTotals struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCount   int64           `json:"total_count"`
}

// SalesBetween calculates sales within [start, end)
func (e *Engine) SalesBetween(ctx context.Context, start, end time.Time) (*SalesTotals, error) {
	var result SalesTotals

	revenue, err := e.sum(ctx, &models.Sale{}, "total_amount", "sale_date", start, end)
	if err != nil {
		return nil, err
	}
	result.TotalRevenue = revenue

	err = e.db.WithContext(ctx).Model(&models.Sale{}).
		Where("sale_date >= ? AND sale_date < ?", start.UTC(), end.UTC()).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// --- Dashboard ---

type Dashboard struct {
	ProductCount  int64           `json:"product_count"`
	TodaySales    decimal.Decimal `json:"today_sales"`
	MonthProfit   decimal.Decimal `json:"month_profit"`
	LowStockCount int64           `json:"low_stock_count"`
}

// Dashboard gives the home-page figures. Month profit here is sales minus
// purchases minus expenses; other income is left to the financial report.
func (e *Engine) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	var d Dashboard

	if err := e.db.WithContext(ctx).Model(&models.Product{}).Count(&d.ProductCount).Error; err != nil {
		return nil, err
	}

	today := e.startOfDay(now)
	todaySales, err := e.sum(ctx, &models.Sale{}, "total_amount", "sale_date", today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	d.TodaySales = todaySales

	m, err := e.MonthlySummary(ctx, now)
	if err != nil {
		return nil, err
	}
	d.MonthProfit = m.Sales.Sub(m.Purchases).Sub(m.Expenses)

	err = e.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("quantity < ?", e.lowStock).
		Count(&d.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// --- Monthly summary ---

type MonthSummary struct {
	Month     string          `json:"month"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
	Expenses  decimal.Decimal `json:"expenses"`
	Income    decimal.Decimal `json:"income"`
	Profit    decimal.Decimal `json:"profit"`
}

// MonthlySummary totals one calendar month. Profit is
// (sales + income) - (purchases + expenses).
func (e *Engine) MonthlySummary(ctx context.Context, month time.Time) (*MonthSummary, error) {
	start := e.startOfMonth(month)
	end := start.AddDate(0, 1, 0)

	s := MonthSummary{Month: start.Format(monthLayout)}
	var err error
	if s.Sales, err = e.sum(ctx, &models.Sale{}, "total_amount", "sale_date", start, end); err != nil {
		return nil, err
	}
	if s.Purchases, err = e.sum(ctx, &models.Purchase{}, "total_cost", "purchase_date", start, end); err != nil {
		return nil, err
	}
	if s.Expenses, err = e.sum(ctx, &models.Expense{}, "amount", "expense_date", start, end); err != nil {
		return nil, err
	}
	if s.Income, err = e.sum(ctx, &models.Income{}, "amount", "income_date", start, end); err != nil {
		return nil, err
	}
	s.Profit = s.Sales.Add(s.Income).Sub(s.Purchases).Sub(s.Expenses)
	return &s, nil
}
