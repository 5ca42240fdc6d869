package reports

import (
	"context"
	"time"

	"go-shop-manager/internal/models"

	"github.com/shopspring/decimal"
)

type DailyTotal struct {
	Date        string          `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type MonthlyTotal struct {
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ProductSales struct {
	Name          string          `json:"name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type SalesReport struct {
	Daily       []DailyTotal   `json:"daily_sales"`
	Monthly     []MonthlyTotal `json:"monthly_sales"`
	TopProducts []ProductSales `json:"product_sales"`
}

const (
	dailyWindow = 30
	topProducts = 10
)

// SalesReport returns every day of the last 30 (today included), every month
// from the first sale to the last, and the ten best products by amount. Days
// and months without sales are present with zero.
func (e *Engine) SalesReport(ctx context.Context, now time.Time) (*SalesReport, error) {
	var sales []models.Sale
	err := e.db.WithContext(ctx).
		Select("sale_date", "total_amount").
		Order("sale_date").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		Daily:       e.dailyTotals(sales, now),
		Monthly:     e.monthlyTotals(sales),
		TopProducts: []ProductSales{},
	}

	err = e.db.WithContext(ctx).Table("sales").
		Select("products.name AS name, SUM(sales.quantity) AS total_quantity, SUM(sales.total_amount) AS total_amount").
		Joins("JOIN products ON sales.product_id = products.id").
		Group("products.name").
		Order("total_amount DESC").
		Limit(topProducts).
		Scan(&report.TopProducts).Error
	if err != nil {
		return nil, err
	}
	for i := range report.TopProducts {
		report.TopProducts[i].TotalAmount = report.TopProducts[i].TotalAmount.Round(2)
	}

	return report, nil
}

func (e *Engine) dailyTotals(sales []models.Sale, now time.Time) []DailyTotal {
	first := e.startOfDay(now).AddDate(0, 0, -(dailyWindow - 1))

	byDay := make(map[string]decimal.Decimal)
	for _, s := range sales {
		if s.SaleDate.Before(first) {
			continue
		}
		key := s.SaleDate.In(e.loc).Format(dayLayout)
		byDay[key] = byDay[key].Add(s.TotalAmount)
	}

	out := make([]DailyTotal, 0, dailyWindow)
	for i := 0; i < dailyWindow; i++ {
		key := first.AddDate(0, 0, i).Format(dayLayout)
		out = append(out, DailyTotal{Date: key, TotalAmount: byDay[key].Round(2)})
	}
	return out
}

// monthlyTotals expects sales sorted by date.
func (e *Engine) monthlyTotals(sales []models.Sale) []MonthlyTotal {
	out := []MonthlyTotal{}
	if len(sales) == 0 {
		return out
	}

	byMonth := make(map[string]decimal.Decimal)
	for _, s := range sales {
		key := s.SaleDate.In(e.loc).Format(monthLayout)
		byMonth[key] = byMonth[key].Add(s.TotalAmount)
	}

	last := e.startOfMonth(sales[len(sales)-1].SaleDate)
	for m := e.startOfMonth(sales[0].SaleDate); !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		out = append(out, MonthlyTotal{Month: key, TotalAmount: byMonth[key].Round(2)})
	}
	return out
}
