package pipeline

import (
	"strings"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/catalog"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

// AliasLookup resolves a normalized product name to a catalog item id.
// Implementations are tenant-scoped snapshots; nil disables the alias tier.
type AliasLookup interface {
	Lookup(normalizedName string) (itemID string, ok bool)
}

// AliasMap is the in-memory AliasLookup loaded from storage.
type AliasMap map[string]string

func (m AliasMap) Lookup(normalizedName string) (string, bool) {
	id, ok := m[normalizedName]
	return id, ok
}

type ProductMatcher struct {
	cfg     config.Config
	index   *catalog.Index
	aliases AliasLookup
}

func NewProductMatcher(cfg config.Config, items []internal.CatalogItem, aliases AliasLookup) *ProductMatcher {
	return &ProductMatcher{cfg: cfg, index: catalog.BuildIndex(items), aliases: aliases}
}

// Match resolves one order line against the catalog snapshot. Tiers are
// tried in order and the first hit wins: barcode exact, alias, name
// exact/containment, fuzzy name above the configured threshold.
func (m *ProductMatcher) Match(barcode, productName string) internal.ProductMatch {
	if code := util.NormalizeBarcode(barcode); code != "" {
		if item, ok := m.index.ByBarcode[code]; ok {
			return internal.ProductMatch{Item: &item, Confidence: internal.ConfidenceExact, Rule: internal.RuleBarcode, Score: 1}
		}
	}

	normName := util.NormalizeProductName(productName)
	if normName == "" {
		return internal.ProductMatch{Confidence: internal.ConfidenceNone, Rule: internal.RuleNone}
	}

	if m.aliases != nil {
		if id, ok := m.aliases.Lookup(normName); ok {
			// A stale alias pointing at a since-removed or deactivated item
			// degrades to the name tiers instead of resolving dangling.
			if item, ok := m.index.ByID[id]; ok {
				return internal.ProductMatch{Item: &item, Confidence: internal.ConfidenceExact, Rule: internal.RuleName, Score: 1}
			}
		}
	}

	for _, item := range m.index.Items {
		candidate := m.index.NormalizedByID[item.ID]
		if candidate == "" {
			continue
		}
		if candidate == normName || strings.Contains(candidate, normName) || strings.Contains(normName, candidate) {
			matched := item
			return internal.ProductMatch{Item: &matched, Confidence: internal.ConfidenceHigh, Rule: internal.RuleName, Score: 1}
		}
	}

	var best *internal.CatalogItem
	bestScore := 0.0
	for i := range m.index.Items {
		score := util.SimilarityWithContainment(productName, m.index.Items[i].Name, m.cfg.MatchContainmentScore)
		if score > bestScore {
			bestScore = score
			best = &m.index.Items[i]
		}
	}
	if best != nil && bestScore >= m.cfg.MatchProductThreshold {
		return internal.ProductMatch{Item: best, Confidence: internal.ConfidenceLow, Rule: internal.RuleName, Score: bestScore}
	}

	return internal.ProductMatch{Confidence: internal.ConfidenceNone, Rule: internal.RuleNone, Score: bestScore}
}
