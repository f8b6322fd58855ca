package pipeline

import "testing"

func TestParseOrderText(t *testing.T) {
	raw := "05/03/2026,PO1001,Acme Pty Ltd,123 456,,Widget A,10,0\n,,,,,,,,"
	result := ParseOrderText(raw)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("len=%d", len(result.Lines))
	}

	line := result.Lines[0]
	if line.Date != "2026-03-05" {
		t.Fatalf("date=%q", line.Date)
	}
	if line.Barcode != "123456" {
		t.Fatalf("barcode=%q", line.Barcode)
	}
	if line.Quantity != 10 {
		t.Fatalf("quantity=%d", line.Quantity)
	}
	if line.ProductName != "Widget A" {
		t.Fatalf("product=%q", line.ProductName)
	}
	if result.OrderNumber != "PO1001" || result.CustomerName != "Acme Pty Ltd" || result.Date != "2026-03-05" {
		t.Fatalf("order fields: %q %q %q", result.OrderNumber, result.CustomerName, result.Date)
	}
}

func TestParseOrderTextQuotedDelimiter(t *testing.T) {
	raw := `2026-03-05,PO2,"Smith, Jones & Co",,,Widget B,3,0`
	result := ParseOrderText(raw)
	if !result.Success || len(result.Lines) != 1 {
		t.Fatalf("result=%+v", result)
	}
	if result.Lines[0].CustomerName != "Smith, Jones & Co" {
		t.Fatalf("customer=%q", result.Lines[0].CustomerName)
	}
}

func TestParseOrderTextSkipsHeaderRow(t *testing.T) {
	raw := "Date,Order Number,Customer,Barcode,Ignored,Product,Quantity,Extra\n" +
		"2026-03-05,PO3,Acme,,,Widget C,2,0"
	result := ParseOrderText(raw)
	if !result.Success || len(result.Lines) != 1 {
		t.Fatalf("result=%+v", result)
	}
	if result.OrderNumber != "PO3" {
		t.Fatalf("order number=%q", result.OrderNumber)
	}
}

func TestParseOrderTextDropsBadRows(t *testing.T) {
	raw := "2026-03-05,PO4,Acme,,,Widget D,zero,0\n" + // non-numeric qty
		"2026-03-05,PO4,Acme,,,Widget E,-2,0\n" + // non-positive qty
		"2026-03-05,PO4,Acme\n" + // too few fields
		"2026-03-05,PO4,Acme,,,Widget F,4,0"
	result := ParseOrderText(raw)
	if !result.Success || len(result.Lines) != 1 {
		t.Fatalf("result=%+v", result)
	}
	if result.Lines[0].ProductName != "Widget F" {
		t.Fatalf("product=%q", result.Lines[0].ProductName)
	}
}

func TestParseOrderTextAllInvalid(t *testing.T) {
	result := ParseOrderText("not,an,order\n\n,,,,,,,,")
	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Err == "" {
		t.Fatalf("expected descriptive error")
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected empty line list")
	}
}

func TestParseOrderTextFirstLineWinsOrderFields(t *testing.T) {
	raw := "2026-03-05,PO5,Acme,,,Widget G,1,0\n" +
		"2026-03-06,PO6,Other Pty,,,Widget H,2,0"
	result := ParseOrderText(raw)
	if len(result.Lines) != 2 {
		t.Fatalf("len=%d", len(result.Lines))
	}
	if result.OrderNumber != "PO5" || result.CustomerName != "Acme" || result.Date != "2026-03-05" {
		t.Fatalf("order fields overwritten: %+v", result)
	}
}
