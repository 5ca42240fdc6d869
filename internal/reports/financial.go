package reports

import (
	"context"
	"time"

	"go-shop-manager/internal/models"

	"github.com/shopspring/decimal"
)

type CategoryAmount struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// FinancialReport is the month-to-date income statement, a simple balance
// sheet and the operating cash flow.
type FinancialReport struct {
	Month string `json:"month"`

	Sales             decimal.Decimal  `json:"sales"`
	PurchaseCost      decimal.Decimal  `json:"purchase_cost"`
	Expenses          decimal.Decimal  `json:"expenses"`
	OtherIncome       decimal.Decimal  `json:"other_income"`
	Profit            decimal.Decimal  `json:"profit"`
	ExpenseCategories []CategoryAmount `json:"expense_categories"`
	IncomeCategories  []CategoryAmount `json:"income_categories"`

	InventoryValue decimal.Decimal `json:"inventory_value"`
	TotalAssets    decimal.Decimal `json:"total_assets"`
	Liabilities    decimal.Decimal `json:"liabilities"`
	Equity         decimal.Decimal `json:"equity"`

	CashIn      decimal.Decimal `json:"cash_in"`
	CashOut     decimal.Decimal `json:"cash_out"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
}

// FinancialReport covers the calendar month containing now. Inventory is
// valued at cost. There is no debt tracking, so liabilities are zero and
// equity equals profit.
func (e *Engine) FinancialReport(ctx context.Context, now time.Time) (*FinancialReport, error) {
	m, err := e.MonthlySummary(ctx, now)
	if err != nil {
		return nil, err
	}
	start := e.startOfMonth(now)
	end := start.AddDate(0, 1, 0)

	r := &FinancialReport{
		Month:        m.Month,
		Sales:        m.Sales,
		PurchaseCost: m.Purchases,
		Expenses:     m.Expenses,
		OtherIncome:  m.Income,
		Profit:       m.Profit,
		Liabilities:  decimal.Zero,
	}

	if r.ExpenseCategories, err = e.byCategory(ctx, &models.Expense{}, "expense_date", start, end); err != nil {
		return nil, err
	}
	if r.IncomeCategories, err = e.byCategory(ctx, &models.Income{}, "income_date", start, end); err != nil {
		return nil, err
	}

	valuation, err := e.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	r.InventoryValue = valuation.GrandTotal
	r.TotalAssets = r.InventoryValue.Add(r.Profit)
	r.Equity = r.Profit

	r.CashIn = r.Sales.Add(r.OtherIncome)
	r.CashOut = r.PurchaseCost.Add(r.Expenses)
	r.NetCashFlow = r.CashIn.Sub(r.CashOut)

	return r, nil
}

// byCategory sums amount per category over [start, end), largest first.
func (e *Engine) byCategory(ctx context.Context, model any, dateColumn string, start, end time.Time) ([]CategoryAmount, error) {
	out := []CategoryAmount{}
	err := e.db.WithContext(ctx).Model(model).
		Select("category, SUM(amount) AS total").
		Where(dateColumn+" >= ? AND "+dateColumn+" < ?", start.UTC(), end.UTC()).
		Group("category").
		Order("total DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Total = out[i].Total.Round(2)
	}
	return out, nil
}
