package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/pipeline"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

// fakeStore records workflow writes in memory and can fail on demand.
type fakeStore struct {
	lines    []internal.OrderLine
	subtotal float64
	tax      float64
	total    float64
	aliases  map[string]internal.Alias
	notes    string

	failInsert error
	failTotals error
	failAlias  error
}

func newFakeStore(subtotal, tax float64) *fakeStore {
	return &fakeStore{
		subtotal: subtotal,
		tax:      tax,
		total:    subtotal + tax,
		aliases:  map[string]internal.Alias{},
	}
}

func (f *fakeStore) InsertOrderLine(_ context.Context, line internal.OrderLine) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeStore) AddOrderTotals(_ context.Context, _ string, subtotalDelta, taxDelta float64) error {
	if f.failTotals != nil {
		return f.failTotals
	}
	f.subtotal = util.RoundCents(f.subtotal + subtotalDelta)
	f.tax = util.RoundCents(f.tax + taxDelta)
	f.total = util.RoundCents(f.subtotal + f.tax)
	return nil
}

func (f *fakeStore) UpsertAlias(_ context.Context, alias internal.Alias) error {
	if f.failAlias != nil {
		return f.failAlias
	}
	f.aliases[alias.NormalizedName] = alias
	return nil
}

func (f *fakeStore) UpdateOrderNotes(_ context.Context, _ string, notes string) error {
	f.notes = notes
	return nil
}

func testOrder() internal.Order {
	return internal.Order{
		ID:       "ord-1",
		Tenant:   "t1",
		Number:   "PO1001",
		Notes:    "⚠️ UNMATCHED ITEMS (2):\n- Widget B x2 (no code)\n- Widget C x1 (SKU99)",
		Subtotal: 100,
		Tax:      10,
		Total:    110,
	}
}

func testItem() internal.CatalogItem {
	return internal.CatalogItem{
		ID:        "item-1",
		Tenant:    "t1",
		Name:      "Widget B Large",
		UnitPrice: 5,
		TaxRate:   internal.FloatPtr(0.10),
		Status:    internal.ItemActive,
	}
}

func TestSessionSelectMatchUpdatesTotalsIncrementally(t *testing.T) {
	store := newFakeStore(100, 10)
	session := NewSession(store, testOrder(), 0.10)
	require.Equal(t, StateAwaiting, session.State())
	require.Equal(t, 2, session.Remaining())

	item := testItem()
	require.NoError(t, session.SelectMatch(context.Background(), &item, false))

	// qty 2 at 5.00 with 10% tax on top of 100.00/10.00.
	assert.InDelta(t, 110.00, store.subtotal, 1e-9)
	assert.InDelta(t, 11.00, store.tax, 1e-9)
	assert.InDelta(t, 121.00, store.total, 1e-9)

	require.Len(t, store.lines, 1)
	assert.Equal(t, 2, store.lines[0].Quantity)
	assert.InDelta(t, 10.00, store.lines[0].LineTotal, 1e-9)

	assert.Equal(t, StateAwaiting, session.State())
	assert.Equal(t, 1, session.Remaining())
}

func TestSessionSelectMatchRequiresSelection(t *testing.T) {
	store := newFakeStore(0, 0)
	session := NewSession(store, testOrder(), 0.10)

	err := session.SelectMatch(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, 2, session.Remaining())
}

func TestSessionWriteFailureDoesNotAdvanceCursor(t *testing.T) {
	store := newFakeStore(0, 0)
	session := NewSession(store, testOrder(), 0.10)
	item := testItem()

	store.failInsert = errors.New("storage rejected write")
	err := session.SelectMatch(context.Background(), &item, false)
	require.EqualError(t, err, "storage rejected write")
	assert.Equal(t, StateAwaiting, session.State())
	assert.Equal(t, 2, session.Remaining())

	current, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "Widget B", current.Name)

	// Same step retries cleanly once the store recovers.
	store.failInsert = nil
	require.NoError(t, session.SelectMatch(context.Background(), &item, false))
	assert.Equal(t, 1, session.Remaining())
}

func TestSessionSkipAndFinalize(t *testing.T) {
	store := newFakeStore(0, 0)
	order := testOrder()
	session := NewSession(store, order, 0.10)

	require.NoError(t, session.Skip())
	require.NoError(t, session.Skip())
	assert.True(t, session.Done())
	assert.ErrorIs(t, session.Skip(), ErrSessionDone)

	require.NoError(t, session.Finalize(context.Background()))
	assert.Empty(t, store.notes)
	assert.Empty(t, store.lines)
}

func TestSessionAliasRoundTrip(t *testing.T) {
	store := newFakeStore(0, 0)
	session := NewSession(store, testOrder(), 0.10)
	item := testItem()

	require.NoError(t, session.SelectMatch(context.Background(), &item, true))

	alias, ok := store.aliases["widget b"]
	require.True(t, ok)
	assert.Equal(t, "item-1", alias.ItemID)
	assert.Equal(t, "Widget B", alias.OriginalText)
	assert.Equal(t, "t1", alias.Tenant)

	// A later import on an unrelated catalog state resolves the taught name
	// through the alias tier even though no name tier would have matched.
	aliasMap := pipeline.AliasMap{}
	for name, a := range store.aliases {
		aliasMap[name] = a.ItemID
	}
	catalog := []internal.CatalogItem{
		item,
		{ID: "item-2", Tenant: "t1", Name: "Unrelated Thing", UnitPrice: 9, Status: internal.ItemActive},
	}
	cfg := config.Config{MatchProductThreshold: 0.80, MatchCustomerThreshold: 0.70, MatchContainmentScore: 0.85}
	matcher := pipeline.NewProductMatcher(cfg, catalog, aliasMap)

	res := matcher.Match("", "Widget B")
	require.NotNil(t, res.Item)
	assert.Equal(t, "item-1", res.Item.ID)
	assert.Equal(t, internal.ConfidenceExact, res.Confidence)
}

func TestSessionNoBlockIsImmediatelyDone(t *testing.T) {
	order := testOrder()
	order.Notes = "just a delivery note"
	session := NewSession(newFakeStore(0, 0), order, 0.10)
	assert.True(t, session.Done())
}
