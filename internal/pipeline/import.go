package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

// ImportStore is the slice of the storage collaborator the import pipeline
// consumes: snapshot reads plus one atomic batch submission.
type ImportStore interface {
	ListActiveCatalogItems(ctx context.Context, tenant string) ([]internal.CatalogItem, error)
	ListCustomers(ctx context.Context, tenant string) ([]internal.CustomerRecord, error)
	LoadAliases(ctx context.Context, tenant string) (map[string]string, error)
	CreateOrderWithLines(ctx context.Context, order internal.Order, lines []internal.OrderLine) error
}

type ImportService struct {
	store ImportStore
	cfg   config.Config
	log   zerolog.Logger
}

func NewImportService(store ImportStore, cfg config.Config, log zerolog.Logger) *ImportService {
	return &ImportService{store: store, cfg: cfg, log: log}
}

type LineOutcome struct {
	Line  internal.RawOrderLine `json:"line"`
	Match internal.ProductMatch `json:"match"`
}

type ImportResult struct {
	OrderID     string                 `json:"orderId"`
	OrderNumber string                 `json:"orderNumber"`
	Date        string                 `json:"date"`
	Customer    internal.CustomerMatch `json:"customer"`
	Matched     []LineOutcome          `json:"matched"`
	Unmatched   []internal.RawOrderLine `json:"unmatched"`
	Subtotal    float64                `json:"subtotal"`
	Tax         float64                `json:"tax"`
	Total       float64                `json:"total"`
}

// ImportCSV runs the one-shot batch pipeline over raw delimited text: parse,
// match every line against snapshots, then submit order and lines as a
// single write. Matching never blocks on I/O.
func (s *ImportService) ImportCSV(ctx context.Context, tenant, raw string) (ImportResult, error) {
	return s.importParsed(ctx, tenant, ParseOrderText(raw))
}

// ImportXLSX feeds the first sheet of a workbook through the same row
// validation as CSV text.
func (s *ImportService) ImportXLSX(ctx context.Context, tenant string, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return ImportResult{}, err
	}
	return s.importParsed(ctx, tenant, ParseRows(rows))
}

func (s *ImportService) importParsed(ctx context.Context, tenant string, parsed ParseResult) (ImportResult, error) {
	if !parsed.Success {
		return ImportResult{}, fmt.Errorf("import failed: %s", parsed.Err)
	}

	items, err := s.store.ListActiveCatalogItems(ctx, tenant)
	if err != nil {
		return ImportResult{}, err
	}
	customers, err := s.store.ListCustomers(ctx, tenant)
	if err != nil {
		return ImportResult{}, err
	}
	aliases, err := s.store.LoadAliases(ctx, tenant)
	if err != nil {
		return ImportResult{}, err
	}

	matcher := NewProductMatcher(s.cfg, items, AliasMap(aliases))
	customerMatch := NewCustomerMatcher(s.cfg, customers).Match(parsed.CustomerName)

	result := ImportResult{
		OrderID:     uuid.NewString(),
		OrderNumber: parsed.OrderNumber,
		Date:        parsed.Date,
		Customer:    customerMatch,
	}

	lines := make([]internal.OrderLine, 0, len(parsed.Lines))
	for _, raw := range parsed.Lines {
		match := matcher.Match(raw.Barcode, raw.ProductName)
		if match.Item == nil {
			result.Unmatched = append(result.Unmatched, raw)
			continue
		}
		result.Matched = append(result.Matched, LineOutcome{Line: raw, Match: match})

		lineTotal := util.RoundCents(match.Item.UnitPrice * float64(raw.Quantity))
		rate := s.cfg.DefaultTaxRate
		if match.Item.TaxRate != nil {
			rate = *match.Item.TaxRate
		}
		lines = append(lines, internal.OrderLine{
			ID:        uuid.NewString(),
			OrderID:   result.OrderID,
			ItemID:    match.Item.ID,
			Name:      match.Item.Name,
			UnitPrice: match.Item.UnitPrice,
			Quantity:  raw.Quantity,
			TaxRate:   rate,
			LineTotal: lineTotal,
		})
		result.Subtotal = util.RoundCents(result.Subtotal + lineTotal)
		result.Tax = util.RoundCents(result.Tax + util.RoundCents(lineTotal*rate))
	}
	result.Total = util.RoundCents(result.Subtotal + result.Tax)

	order := internal.Order{
		ID:        result.OrderID,
		Tenant:    tenant,
		Number:    parsed.OrderNumber,
		OrderDate: parsed.Date,
		Subtotal:  result.Subtotal,
		Tax:       result.Tax,
		Total:     result.Total,
		Status:    "pending",
	}
	if customerMatch.Customer != nil {
		order.CustomerID = customerMatch.Customer.ID
	}
	if len(result.Unmatched) > 0 {
		// Leftover lines ride along in the notes block for interactive
		// resolution later.
		unmatched := make([]internal.UnmatchedItem, 0, len(result.Unmatched))
		for _, raw := range result.Unmatched {
			item := internal.UnmatchedItem{Name: raw.ProductName, Quantity: raw.Quantity}
			if raw.Barcode != "" {
				code := raw.Barcode
				item.Code = &code
			}
			unmatched = append(unmatched, item)
		}
		order.Notes = FormatUnmatchedBlock(unmatched)
	}

	if err := s.store.CreateOrderWithLines(ctx, order, lines); err != nil {
		return ImportResult{}, err
	}

	s.log.Info().
		Str("orderId", order.ID).
		Str("tenant", tenant).
		Str("number", order.Number).
		Int("matched", len(result.Matched)).
		Int("unmatched", len(result.Unmatched)).
		Str("customerConfidence", string(customerMatch.Confidence)).
		Msg("order imported")

	return result, nil
}
