package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/reports"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	engine *reports.Engine
	now    func() time.Time
}

func NewReportHandler(engine *reports.Engine) *ReportHandler {
	return &ReportHandler{engine: engine, now: time.Now}
}

// --- GET: /api/reports/dashboard ---
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	d, err := h.engine.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- GET: /api/reports/sales ---
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	r, err := h.engine.SalesReport(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// --- GET: /api/reports/inventory ---
func (h *ReportHandler) GetInventoryReport(c *gin.Context) {
	r, err := h.engine.InventoryReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// --- GET: /api/reports/financial ---
func (h *ReportHandler) GetFinancialReport(c *gin.Context) {
	r, err := h.engine.FinancialReport(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// --- GET: /api/reports/monthly?month=YYYY-MM --- defaults to this month
func (h *ReportHandler) GetMonthlySummary(c *gin.Context) {
	month := h.now()
	if q := c.Query("month"); q != "" {
		parsed, err := time.Parse("2006-01", q)
		if err != nil {
			respondError(c, apperr.Validation("month must be in YYYY-MM format"))
			return
		}
		// mid-month so the report's time zone cannot shift it into a neighbour
		month = parsed.AddDate(0, 0, 14)
	}

	s, err := h.engine.MonthlySummary(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the total cost value of all physical inventory
func (h *ReportHandler) GetStockValuation(c *gin.Context) {
	v, err := h.engine.Valuation(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// --- Exports ---

func (h *ReportHandler) attach(c *gin.Context, name, ext, contentType string, body []byte) {
	filename := fmt.Sprintf("%s_%s.%s", name, h.now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

func (h *ReportHandler) ExportInventoryXLSX(c *gin.Context) {
	r, err := h.engine.InventoryReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteInventoryXLSX(&buf, r); err != nil {
		respondError(c, err)
		return
	}
	h.attach(c, "inventory", "xlsx", reports.XLSXContentType, buf.Bytes())
}

func (h *ReportHandler) ExportInventoryPDF(c *gin.Context) {
	r, err := h.engine.InventoryReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteInventoryPDF(&buf, r, h.now()); err != nil {
		respondError(c, err)
		return
	}
	h.attach(c, "inventory", "pdf", reports.PDFContentType, buf.Bytes())
}

func (h *ReportHandler) ExportSalesXLSX(c *gin.Context) {
	r, err := h.engine.SalesReport(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteSalesXLSX(&buf, r); err != nil {
		respondError(c, err)
		return
	}
	h.attach(c, "sales", "xlsx", reports.XLSXContentType, buf.Bytes())
}
