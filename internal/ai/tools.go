package ai

import (
	"context"
	"fmt"
	"time"

	"go-shop-manager/internal/catalog"
	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/reports"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

const (
	ToolCheckInventory     = "check_inventory"
	ToolSalesReport        = "get_sales_report"
	ToolMonthlySummary     = "get_monthly_summary"
	ToolUpdateProductPrice = "update_product_price"
)

// Tools executes the functions the model may call. It holds no model state,
// so it can be driven directly.
type Tools struct {
	Catalog  *catalog.Store
	Recorder *inventory.Recorder
	Reports  *reports.Engine
	Location *time.Location
}

func (t *Tools) loc() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

// Declarations describes every tool to the model.
func Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolCheckInventory,
			Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Category, Price, Cost or Stock.",
		},
		{
			Name:        ToolSalesReport,
			Description: "Get total sales revenue and number of sales for a date range (both days included).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        ToolMonthlySummary,
			Description: "Get sales, purchases, expenses, other income and profit for one month.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"month": {Type: genai.TypeString, Description: "Month (YYYY-MM)"},
				},
				Required: []string{"month"},
			},
		},
		{
			Name:        ToolUpdateProductPrice,
			Description: "Update the sale price of a specific product using its ID",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
					"new_price":  {Type: genai.TypeNumber, Description: "New sale price"},
				},
				Required: []string{"product_id", "new_price"},
			},
		},
	}
}

// Call runs one tool. Bad arguments come back as an error so the caller can
// report them to the model instead of failing the conversation.
func (t *Tools) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case ToolCheckInventory:
		return t.checkInventory(ctx)
	case ToolSalesReport:
		return t.salesReport(ctx, args)
	case ToolMonthlySummary:
		return t.monthlySummary(ctx, args)
	case ToolUpdateProductPrice:
		return t.updatePrice(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

// checkInventory returns plain maps and slices; function responses only
// carry JSON-like values.
func (t *Tools) checkInventory(ctx context.Context) (map[string]any, error) {
	rows, err := t.Recorder.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(rows))
	for _, r := range rows {
		list = append(list, map[string]any{
			"id":         r.ProductID,
			"name":       r.Product.Name,
			"category":   r.Product.Category,
			"stock":      r.Quantity,
			"price":      r.Product.Price.InexactFloat64(),
			"cost_price": r.Product.CostPrice.InexactFloat64(),
		})
	}
	return map[string]any{"inventory": list}, nil
}

func (t *Tools) salesReport(ctx context.Context, args map[string]any) (map[string]any, error) {
	start, err := t.date(args, "start_date", "2006-01-02")
	if err != nil {
		return nil, err
	}
	end, err := t.date(args, "end_date", "2006-01-02")
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date is before start_date")
	}

	totals, err := t.Reports.SalesBetween(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"revenue":     totals.TotalRevenue.InexactFloat64(),
		"sales_count": totals.TotalCount,
	}, nil
}

func (t *Tools) monthlySummary(ctx context.Context, args map[string]any) (map[string]any, error) {
	month, err := t.date(args, "month", "2006-01")
	if err != nil {
		return nil, err
	}
	s, err := t.Reports.MonthlySummary(ctx, month)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"month":     s.Month,
		"sales":     s.Sales.InexactFloat64(),
		"purchases": s.Purchases.InexactFloat64(),
		"expenses":  s.Expenses.InexactFloat64(),
		"income":    s.Income.InexactFloat64(),
		"profit":    s.Profit.InexactFloat64(),
	}, nil
}

func (t *Tools) updatePrice(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, ok := args["product_id"].(float64)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("product_id must be a positive number")
	}
	price, ok := args["new_price"].(float64)
	if !ok {
		return nil, fmt.Errorf("new_price must be a number")
	}

	product, err := t.Catalog.UpdatePrice(ctx, uint(id), decimal.NewFromFloat(price).Round(2))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"status":     "updated",
		"product_id": product.ID,
		"name":       product.Name,
		"new_price":  product.Price.InexactFloat64(),
	}, nil
}

func (t *Tools) date(args map[string]any, key, layout string) (time.Time, error) {
	raw, ok := args[key].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	d, err := time.ParseInLocation(layout, raw, t.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in %s format", key, layout)
	}
	return d, nil
}
