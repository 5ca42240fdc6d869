package handlers

import (
	"net/http"

	"go-shop-manager/internal/inventory"

	"github.com/gin-gonic/gin"
)

// StockHandler serves purchases, sales and the inventory they move.
type StockHandler struct {
	recorder *inventory.Recorder
}

func NewStockHandler(recorder *inventory.Recorder) *StockHandler {
	return &StockHandler{recorder: recorder}
}

func (h *StockHandler) GetPurchases(c *gin.Context) {
	purchases, err := h.recorder.ListPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *StockHandler) AddPurchase(c *gin.Context) {
	var input inventory.PurchaseInput
	if !bindJSON(c, &input) {
		return
	}
	purchase, err := h.recorder.RecordPurchase(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *StockHandler) DeletePurchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.recorder.DeletePurchase(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted successfully"})
}

func (h *StockHandler) GetSales(c *gin.Context) {
	sales, err := h.recorder.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// AddSale answers 422 when the shelf holds less than requested.
func (h *StockHandler) AddSale(c *gin.Context) {
	var input inventory.SaleInput
	if !bindJSON(c, &input) {
		return
	}
	sale, err := h.recorder.RecordSale(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *StockHandler) DeleteSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.recorder.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}

func (h *StockHandler) GetInventory(c *gin.Context) {
	rows, err := h.recorder.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- GET /api/inventory/:id --- on-hand quantity of one product
func (h *StockHandler) GetProductStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	qty, err := h.recorder.Quantity(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "quantity": qty})
}
