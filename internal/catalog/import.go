package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jyelen1110/Alfies-sub000/internal"
)

// ReadItemsXLSX reads a catalog seed workbook. Expected columns on the first
// sheet: id, name, barcode, sku, unit_price, tax_rate, status. The header row
// is detected by the literal "name" in the second column and skipped.
func ReadItemsXLSX(r io.Reader, tenant string) ([]internal.CatalogItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	out := make([]internal.CatalogItem, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(cell(row, 1)), "name") {
			continue
		}

		id := strings.TrimSpace(cell(row, 0))
		name := strings.TrimSpace(cell(row, 1))
		if id == "" || name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(cell(row, 4)), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad unit_price %q", i+1, cell(row, 4))
		}

		item := internal.CatalogItem{
			ID:        id,
			Tenant:    tenant,
			Name:      name,
			UnitPrice: price,
			Status:    internal.ItemActive,
		}
		if v := strings.TrimSpace(cell(row, 2)); v != "" {
			item.Barcode = internal.StringPtr(v)
		}
		if v := strings.TrimSpace(cell(row, 3)); v != "" {
			item.SKU = internal.StringPtr(v)
		}
		if v := strings.TrimSpace(cell(row, 5)); v != "" {
			rate, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad tax_rate %q", i+1, v)
			}
			item.TaxRate = internal.FloatPtr(rate)
		}
		if v := strings.TrimSpace(cell(row, 6)); v != "" {
			item.Status = internal.ItemStatus(strings.ToLower(v))
		}
		out = append(out, item)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no catalog rows found in workbook")
	}
	return out, nil
}

// ReadCustomersXLSX reads a customer directory workbook. Expected columns:
// id, business_name, contact_name, full_name, email.
func ReadCustomersXLSX(r io.Reader, tenant string) ([]internal.CustomerRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	out := make([]internal.CustomerRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(cell(row, 1)), "business_name") {
			continue
		}

		id := strings.TrimSpace(cell(row, 0))
		if id == "" {
			continue
		}
		rec := internal.CustomerRecord{
			ID:     id,
			Tenant: tenant,
			Email:  strings.TrimSpace(cell(row, 4)),
		}
		if v := strings.TrimSpace(cell(row, 1)); v != "" {
			rec.BusinessName = internal.StringPtr(v)
		}
		if v := strings.TrimSpace(cell(row, 2)); v != "" {
			rec.ContactName = internal.StringPtr(v)
		}
		if v := strings.TrimSpace(cell(row, 3)); v != "" {
			rec.FullName = internal.StringPtr(v)
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no customer rows found in workbook")
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
