package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PDFContentType  = "application/pdf"
)

// writeSheet fills a single-sheet workbook with a header row and data rows.
func writeSheet(w io.Writer, sheet string, headers []string, rows [][]any, widths []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteInventoryXLSX renders the inventory report as a workbook with a
// totals row at the bottom.
func WriteInventoryXLSX(w io.Writer, r *InventoryReport) error {
	rows := make([][]any, 0, len(r.Items)+1)
	for _, it := range r.Items {
		value := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		rows = append(rows, []any{
			it.Name, it.Category, it.Quantity, it.Price.InexactFloat64(), value.Round(2).InexactFloat64(),
		})
	}
	rows = append(rows, []any{"Total", "", "", "", r.TotalValue.InexactFloat64()})

	return writeSheet(w, "Inventory",
		[]string{"Product", "Category", "Quantity", "Price", "Value"},
		rows,
		[]float64{30, 18, 10, 12, 14},
	)
}

// WriteSalesXLSX renders the daily and monthly series one after the other.
func WriteSalesXLSX(w io.Writer, r *SalesReport) error {
	rows := make([][]any, 0, len(r.Daily)+len(r.Monthly)+len(r.TopProducts)+4)
	for _, d := range r.Daily {
		rows = append(rows, []any{"day", d.Date, d.TotalAmount.InexactFloat64()})
	}
	for _, m := range r.Monthly {
		rows = append(rows, []any{"month", m.Month, m.TotalAmount.InexactFloat64()})
	}
	for _, p := range r.TopProducts {
		rows = append(rows, []any{"product", fmt.Sprintf("%s (%d)", p.Name, p.TotalQuantity), p.TotalAmount.InexactFloat64()})
	}

	return writeSheet(w, "Sales",
		[]string{"Period", "Label", "Amount"},
		rows,
		[]float64{10, 30, 14},
	)
}

// WriteInventoryPDF renders the inventory report as an A4 table.
func WriteInventoryPDF(w io.Writer, r *InventoryReport, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Inventory Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, "Generated "+generated.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{60, 40, 25, 30, 35}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range []string{"Product", "Category", "Quantity", "Price", "Value"} {
		pdf.CellFormat(widths[i], 9, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range r.Items {
		value := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		pdf.CellFormat(widths[0], 8, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, it.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 8, it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 8, value.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 9, r.TotalValue.StringFixed(2), "1", 1, "R", false, 0, "")

	if len(r.Categories) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 9, "By category", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, c := range r.Categories {
			pdf.CellFormat(100, 8, c.Category, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%d", c.TotalQuantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 8, c.TotalValue.StringFixed(2), "1", 1, "R", false, 0, "")
		}
	}

	return pdf.Output(w)
}
