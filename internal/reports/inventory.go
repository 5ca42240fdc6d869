package reports

import (
	"context"
	"sort"

	"go-shop-manager/internal/models"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

type CategoryStock struct {
	Category      string          `json:"category"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

type InventoryReport struct {
	Items      []InventoryItem `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
	Categories []CategoryStock `json:"categories"`
	LowStock   []InventoryItem `json:"low_stock"`
}

const uncategorized = "Uncategorized"

// stock loads every inventory row with its product, lowest quantity first.
func (e *Engine) stock(ctx context.Context) ([]InventoryItem, error) {
	var rows []models.Inventory
	err := e.db.WithContext(ctx).
		Joins("Product").
		Order("inventories.quantity ASC").
		Order("Product.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]InventoryItem, 0, len(rows))
	for _, r := range rows {
		category := r.Product.Category
		if category == "" {
			category = uncategorized
		}
		items = append(items, InventoryItem{
			ProductID: r.ProductID,
			Name:      r.Product.Name,
			Category:  category,
			Quantity:  r.Quantity,
			Price:     r.Product.Price,
			CostPrice: r.Product.CostPrice,
		})
	}
	return items, nil
}

// InventoryReport values stock at sale price, per item and per category.
func (e *Engine) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	items, err := e.stock(ctx)
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{
		Items:      items,
		TotalValue: decimal.Zero,
		Categories: []CategoryStock{},
		LowStock:   []InventoryItem{},
	}

	byCategory := make(map[string]*CategoryStock)
	for _, it := range items {
		value := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		report.TotalValue = report.TotalValue.Add(value)

		group, ok := byCategory[it.Category]
		if !ok {
			group = &CategoryStock{Category: it.Category, TotalValue: decimal.Zero}
			byCategory[it.Category] = group
		}
		group.TotalQuantity += it.Quantity
		group.TotalValue = group.TotalValue.Add(value)

		if it.Quantity < e.lowStock {
			report.LowStock = append(report.LowStock, it)
		}
	}

	for _, group := range byCategory {
		group.TotalValue = group.TotalValue.Round(2)
		report.Categories = append(report.Categories, *group)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	report.TotalValue = report.TotalValue.Round(2)

	return report, nil
}

// --- Valuation at cost ---

type ValuationItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is one category's block in the valuation report.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Valuation prices on-hand stock at cost, grouped by category.
func (e *Engine) Valuation(ctx context.Context) (*Valuation, error) {
	items, err := e.stock(ctx)
	if err != nil {
		return nil, err
	}

	result := &Valuation{Categories: []CategoryGroup{}, GrandTotal: decimal.Zero}
	grouped := make(map[string]*CategoryGroup)
	for _, it := range items {
		total := it.CostPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))

		group, ok := grouped[it.Category]
		if !ok {
			group = &CategoryGroup{CategoryName: it.Category, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			grouped[it.Category] = group
		}
		group.Items = append(group.Items, ValuationItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			CostPrice: it.CostPrice,
			TotalCost: total.Round(2),
		})
		group.Subtotal = group.Subtotal.Add(total)
		result.GrandTotal = result.GrandTotal.Add(total)
	}

	for _, group := range grouped {
		group.Subtotal = group.Subtotal.Round(2)
		result.Categories = append(result.Categories, *group)
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		return result.Categories[i].CategoryName < result.Categories[j].CategoryName
	})
	result.GrandTotal = result.GrandTotal.Round(2)

	return result, nil
}
