package util

import (
	"testing"
	"time"
)

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{"  Fuji   Apples ", "ALFIE'S\tWHOLESALE", "", "a  b   c"}
	for _, s := range inputs {
		once := NormalizeText(s)
		if NormalizeText(once) != once {
			t.Fatalf("not idempotent for %q: %q", s, once)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Fuji   APPLES  "); got != "fuji apples" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeProductName(t *testing.T) {
	if NormalizeProductName("Alfie’s Muesli") != NormalizeProductName("Alfie's  Muesli") {
		t.Fatalf("apostrophe variants should normalize equal")
	}
}

func TestNormalizeBarcode(t *testing.T) {
	cases := map[string]string{
		"123 456":       "123456",
		"0001234":       "1234",
		" 00 12 34 ":    "1234",
		"":              "",
		"000":           "",
		"9312345678901": "9312345678901",
	}
	for in, want := range cases {
		if got := NormalizeBarcode(in); got != want {
			t.Fatalf("NormalizeBarcode(%q)=%q want %q", in, got, want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	if got := NormalizeDate("2026-03-05"); got != "2026-03-05" {
		t.Fatalf("iso round-trip: %q", got)
	}
	if got := NormalizeDate("05/03/2026"); got != "2026-03-05" {
		t.Fatalf("slash date: %q", got)
	}
	if got := NormalizeDate("5/3/2026"); got != "2026-03-05" {
		t.Fatalf("unpadded slash date: %q", got)
	}
	// Unparseable input falls back to today.
	if got := NormalizeDate("next tuesday"); got != time.Now().Format("2006-01-02") {
		t.Fatalf("fallback: %q", got)
	}
}
