package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		MatchProductThreshold:  0.80,
		MatchCustomerThreshold: 0.70,
		MatchContainmentScore:  0.85,
		DefaultTaxRate:         0.10,
	}
}

func activeItem(id, name string) internal.CatalogItem {
	return internal.CatalogItem{ID: id, Tenant: "t1", Name: name, UnitPrice: 1, Status: internal.ItemActive}
}

func TestMatchBarcodeOutranksName(t *testing.T) {
	byCode := activeItem("A", "Completely Different Product")
	byCode.Barcode = internal.StringPtr("123456")
	byName := activeItem("B", "Widget Alpha")

	m := NewProductMatcher(testConfig(), []internal.CatalogItem{byName, byCode}, nil)
	res := m.Match("123 456", "Widget Alpha")

	require.NotNil(t, res.Item)
	assert.Equal(t, "A", res.Item.ID)
	assert.Equal(t, internal.ConfidenceExact, res.Confidence)
	assert.Equal(t, internal.RuleBarcode, res.Rule)
}

func TestMatchEmptyBarcodeIsNeverAKey(t *testing.T) {
	zeros := activeItem("A", "Zero Coded Product")
	zeros.Barcode = internal.StringPtr("000")

	m := NewProductMatcher(testConfig(), []internal.CatalogItem{zeros}, nil)
	res := m.Match("0", "something unrelated entirely")

	assert.Nil(t, res.Item)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}

func TestMatchAliasTier(t *testing.T) {
	item := activeItem("B", "House Blend Coffee 1kg")
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{item}, AliasMap{"mystery box": "B"})

	res := m.Match("", "Mystery  Box")
	require.NotNil(t, res.Item)
	assert.Equal(t, "B", res.Item.ID)
	assert.Equal(t, internal.ConfidenceExact, res.Confidence)
	assert.Equal(t, internal.RuleName, res.Rule)
}

func TestMatchStaleAliasFallsThrough(t *testing.T) {
	item := activeItem("B", "House Blend Coffee 1kg")
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{item}, AliasMap{"mystery box": "GONE"})

	res := m.Match("", "Mystery Box")
	assert.Nil(t, res.Item)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}

func TestMatchNameContainment(t *testing.T) {
	item := activeItem("C", "Organic Rolled Oats 1kg")
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{item}, nil)

	res := m.Match("", "rolled oats")
	require.NotNil(t, res.Item)
	assert.Equal(t, internal.ConfidenceHigh, res.Confidence)
	assert.Equal(t, internal.RuleName, res.Rule)
}

func TestMatchFuzzyThreshold(t *testing.T) {
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{activeItem("D", "abcdefghij")}, nil)

	// similarity 0.80 is in.
	res := m.Match("", "abcdefghxx")
	require.NotNil(t, res.Item)
	assert.Equal(t, internal.ConfidenceLow, res.Confidence)
	assert.InDelta(t, 0.8, res.Score, 1e-9)

	// similarity 0.70 is out.
	res = m.Match("", "abcdefgxxx")
	assert.Nil(t, res.Item)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}

func TestMatchFuzzyTieBreaksByCatalogOrder(t *testing.T) {
	// Both items score identically; the lower id wins because the index
	// iterates items sorted by id.
	first := activeItem("A1", "abcdefghij")
	second := activeItem("A2", "abcdefghij")
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{second, first}, nil)

	res := m.Match("", "abcdefghxx")
	require.NotNil(t, res.Item)
	assert.Equal(t, "A1", res.Item.ID)
}

func TestMatchExcludesInactiveItems(t *testing.T) {
	inactive := internal.CatalogItem{ID: "E", Tenant: "t1", Name: "Widget Exact", UnitPrice: 1, Status: internal.ItemInactive}
	soldOut := internal.CatalogItem{ID: "F", Tenant: "t1", Name: "Widget Exact", UnitPrice: 1, Status: internal.ItemSoldOut}
	m := NewProductMatcher(testConfig(), []internal.CatalogItem{inactive, soldOut}, nil)

	res := m.Match("", "Widget Exact")
	assert.Nil(t, res.Item)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}
