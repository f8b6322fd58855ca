package pipeline

import (
	"strconv"
	"strings"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

// Imported rows carry at least: Date, OrderNumber, CustomerName, Barcode,
// <ignored>, ProductName, Quantity. Extra trailing columns are ignored.
const minFields = 7

const (
	colDate = iota
	colOrderNumber
	colCustomerName
	colBarcode
	_
	colProductName
	colQuantity
)

type ParseResult struct {
	Success      bool
	Lines        []internal.RawOrderLine
	OrderNumber  string
	CustomerName string
	Date         string
	Err          string
}

// ParseOrderText parses raw delimited order text. Malformed rows are dropped
// silently; only a fully empty result is a failure.
func ParseOrderText(raw string) ParseResult {
	rows := make([][]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Rows that are all delimiters and no content, e.g. ",,,,,,,,".
		if strings.Trim(line, ", \t") == "" {
			continue
		}
		rows = append(rows, splitDelimited(line, ','))
	}
	return ParseRows(rows)
}

// ParseRows validates pre-split rows; the XLSX import path feeds sheet rows
// through here so both formats share one validation pass.
func ParseRows(rows [][]string) ParseResult {
	result := ParseResult{}

	for i, fields := range rows {
		if len(fields) < minFields {
			continue
		}
		if isHeaderRow(fields) {
			continue
		}

		qty, err := strconv.Atoi(strings.TrimSpace(fields[colQuantity]))
		if err != nil || qty <= 0 {
			continue
		}

		line := internal.RawOrderLine{
			RowIndex:     i,
			Date:         util.NormalizeDate(fields[colDate]),
			OrderNumber:  strings.TrimSpace(fields[colOrderNumber]),
			CustomerName: strings.TrimSpace(fields[colCustomerName]),
			Barcode:      util.NormalizeBarcode(fields[colBarcode]),
			ProductName:  strings.TrimSpace(fields[colProductName]),
			Quantity:     qty,
		}
		result.Lines = append(result.Lines, line)

		// Order-level fields come from the first valid line and are never
		// overwritten by later rows.
		if result.OrderNumber == "" {
			result.OrderNumber = line.OrderNumber
		}
		if result.CustomerName == "" {
			result.CustomerName = line.CustomerName
		}
		if result.Date == "" {
			result.Date = line.Date
		}
	}

	if len(result.Lines) == 0 {
		result.Err = "no valid order lines found in input"
		return result
	}
	result.Success = true
	return result
}

// splitDelimited splits one row on the delimiter, treating delimiters inside
// quoted segments as literal text. A quote toggles the in-quotes flag.
func splitDelimited(line string, delim rune) []string {
	fields := []string{}
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())
	return fields
}

func isHeaderRow(fields []string) bool {
	date := strings.ToLower(strings.TrimSpace(fields[colDate]))
	number := strings.ToLower(strings.TrimSpace(fields[colOrderNumber]))
	return date == "date" || number == "order number" || number == "order no"
}
