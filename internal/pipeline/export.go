package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jyelen1110/Alfies-sub000/internal"
)

// ExportOrderToXLSX writes an order's resolved lines and any leftover
// unmatched items to a review workbook.
func ExportOrderToXLSX(order internal.Order, lines []internal.OrderLine, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"order_number", "order_date", "item_id", "name",
		"unit_price", "quantity", "tax_rate", "line_total",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 1
	for _, line := range lines {
		row++
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, order.Number)
		set(2, order.OrderDate)
		set(3, line.ItemID)
		set(4, line.Name)
		set(5, line.UnitPrice)
		set(6, line.Quantity)
		set(7, line.TaxRate)
		set(8, line.LineTotal)
	}

	if unmatched := ParseUnmatchedBlock(order.Notes); len(unmatched) > 0 {
		row += 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, "unmatched")
		for _, item := range unmatched {
			row++
			set := func(col int, value any) {
				c, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, c, value)
			}
			set(1, order.Number)
			set(4, item.Name)
			set(6, item.Quantity)
			if item.Code != nil {
				set(3, *item.Code)
			}
		}
	}

	summary := [][2]any{
		{"subtotal", order.Subtotal},
		{"tax", order.Tax},
		{"total", order.Total},
	}
	row += 2
	for _, kv := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, kv[0])
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, cell, kv[1])
		row++
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
