package internal

type ItemStatus string

const (
	ItemActive   ItemStatus = "active"
	ItemInactive ItemStatus = "inactive"
	ItemSoldOut  ItemStatus = "sold_out"
)

// CatalogItem is a snapshot of one sellable item. Matching never mutates it.
type CatalogItem struct {
	ID        string
	Tenant    string
	Name      string
	Barcode   *string
	SKU       *string
	UnitPrice float64
	TaxRate   *float64
	Status    ItemStatus
}

func (c CatalogItem) Active() bool {
	return c.Status == ItemActive
}

type CustomerRecord struct {
	ID           string
	Tenant       string
	BusinessName *string
	ContactName  *string
	FullName     *string
	Email        string
}

// RawOrderLine is one validated row of imported order text. Rows that fail
// validation are dropped by the parser, never kept as partial records.
type RawOrderLine struct {
	RowIndex     int
	Date         string
	OrderNumber  string
	CustomerName string
	Barcode      string
	ProductName  string
	Quantity     int
}

type MatchConfidence string

type MatchRule string

const (
	ConfidenceExact MatchConfidence = "exact"
	ConfidenceHigh  MatchConfidence = "high"
	ConfidenceLow   MatchConfidence = "low"
	ConfidenceNone  MatchConfidence = "none"

	RuleBarcode MatchRule = "barcode"
	RuleName    MatchRule = "name"
	RulePartial MatchRule = "partial"
	RuleFuzzy   MatchRule = "fuzzy"
	RuleNone    MatchRule = ""
)

// Rank orders confidence tiers for display: exact > high > low > none.
func (c MatchConfidence) Rank() int {
	switch c {
	case ConfidenceExact:
		return 3
	case ConfidenceHigh:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

type ProductMatch struct {
	Item       *CatalogItem    `json:"item"`
	Confidence MatchConfidence `json:"confidence"`
	Rule       MatchRule       `json:"rule"`
	Score      float64         `json:"score"`
}

type CustomerMatch struct {
	Customer   *CustomerRecord `json:"customer"`
	Confidence MatchConfidence `json:"confidence"`
	Rule       MatchRule       `json:"rule"`
	Score      float64         `json:"score"`
}

// Alias is a human-confirmed mapping from a normalized product name to a
// catalog item. (Tenant, NormalizedName) is unique; upserts are
// last-write-wins.
type Alias struct {
	Tenant         string
	NormalizedName string
	ItemID         string
	OriginalText   string
}

// UnmatchedItem is one entry parsed out of an order's unmatched-items notes
// block. Code is nil when the source line carried the "no code" marker.
type UnmatchedItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Code     *string `json:"code"`
}

type Order struct {
	ID         string
	Tenant     string
	Number     string
	CustomerID string
	OrderDate  string
	Notes      string
	Subtotal   float64
	Tax        float64
	Total      float64
	Status     string
}

type OrderLine struct {
	ID        string
	OrderID   string
	ItemID    string
	Name      string
	UnitPrice float64
	Quantity  int
	TaxRate   float64
	LineTotal float64
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
