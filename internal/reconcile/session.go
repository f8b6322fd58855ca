package reconcile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/pipeline"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

type State string

const (
	StateAwaiting  State = "awaiting-resolution"
	StateResolving State = "resolving"
	StateDone      State = "done"
)

var (
	ErrSessionDone = errors.New("reconciliation session is done")
	ErrNoSelection = errors.New("no catalog item selected")
)

// Store is the slice of the storage collaborator the workflow writes
// through. Each SelectMatch step issues these in order: insert line, update
// totals, optionally upsert alias.
type Store interface {
	InsertOrderLine(ctx context.Context, line internal.OrderLine) error
	AddOrderTotals(ctx context.Context, orderID string, subtotalDelta, taxDelta float64) error
	UpsertAlias(ctx context.Context, alias internal.Alias) error
	UpdateOrderNotes(ctx context.Context, orderID, notes string) error
}

// Session walks one order's leftover unmatched items one at a time. Each
// resolved or skipped step is committed independently; aborting a session
// midway keeps already-confirmed lines and discards only the cursor. The
// caller serializes steps: at most one SelectMatch or Skip in flight.
type Session struct {
	order          internal.Order
	items          []internal.UnmatchedItem
	cursor         int
	state          State
	confirmed      []internal.OrderLine
	store          Store
	defaultTaxRate float64
}

// NewSession opens a resolution session over the unmatched-items block
// detected in the order's notes.
func NewSession(store Store, order internal.Order, defaultTaxRate float64) *Session {
	items := pipeline.ParseUnmatchedBlock(order.Notes)
	state := StateAwaiting
	if len(items) == 0 {
		state = StateDone
	}
	return &Session{
		order:          order,
		items:          items,
		state:          state,
		store:          store,
		defaultTaxRate: defaultTaxRate,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Done() bool { return s.state == StateDone }

// Current returns the item under the cursor.
func (s *Session) Current() (internal.UnmatchedItem, bool) {
	if s.state == StateDone {
		return internal.UnmatchedItem{}, false
	}
	return s.items[s.cursor], true
}

func (s *Session) Items() []internal.UnmatchedItem { return s.items }

func (s *Session) Remaining() int {
	if s.state == StateDone {
		return 0
	}
	return len(s.items) - s.cursor
}

// Confirmed lists the order lines inserted by this session so far.
func (s *Session) Confirmed() []internal.OrderLine { return s.confirmed }

// SelectMatch resolves the current item to the chosen catalog item at its
// current price and the pending quantity. Writes happen in order and any
// failure aborts the step without advancing the cursor, so the same item can
// be retried; the storage error is surfaced verbatim.
func (s *Session) SelectMatch(ctx context.Context, item *internal.CatalogItem, rememberAlias bool) error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	if item == nil {
		return ErrNoSelection
	}

	current := s.items[s.cursor]
	qty := current.Quantity
	if qty < 1 {
		qty = 1
	}
	rate := s.defaultTaxRate
	if item.TaxRate != nil {
		rate = *item.TaxRate
	}
	lineTotal := util.RoundCents(item.UnitPrice * float64(qty))

	line := internal.OrderLine{
		ID:        uuid.NewString(),
		OrderID:   s.order.ID,
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  qty,
		TaxRate:   rate,
		LineTotal: lineTotal,
	}

	s.state = StateResolving
	if err := s.store.InsertOrderLine(ctx, line); err != nil {
		s.state = StateAwaiting
		return err
	}
	// Incremental on purpose: a full re-derivation from all lines would
	// clobber concurrent edits to unrelated lines.
	if err := s.store.AddOrderTotals(ctx, s.order.ID, lineTotal, util.RoundCents(lineTotal*rate)); err != nil {
		s.state = StateAwaiting
		return err
	}
	if rememberAlias {
		alias := internal.Alias{
			Tenant:         s.order.Tenant,
			NormalizedName: util.NormalizeProductName(current.Name),
			ItemID:         item.ID,
			OriginalText:   current.Name,
		}
		if err := s.store.UpsertAlias(ctx, alias); err != nil {
			s.state = StateAwaiting
			return err
		}
	}

	s.confirmed = append(s.confirmed, line)
	s.advance()
	return nil
}

// Skip advances past the current item without inserting a line.
func (s *Session) Skip() error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	s.advance()
	return nil
}

// Finalize removes the unmatched-items block from the order's notes. Call
// once the session reports done; totals were already updated per step.
func (s *Session) Finalize(ctx context.Context) error {
	return s.store.UpdateOrderNotes(ctx, s.order.ID, pipeline.RemoveUnmatchedBlock(s.order.Notes))
}

func (s *Session) advance() {
	s.cursor++
	if s.cursor >= len(s.items) {
		s.state = StateDone
		return
	}
	s.state = StateAwaiting
}
