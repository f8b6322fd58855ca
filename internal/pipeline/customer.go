package pipeline

import (
	"strings"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

type CustomerMatcher struct {
	cfg       config.Config
	customers []internal.CustomerRecord
}

func NewCustomerMatcher(cfg config.Config, customers []internal.CustomerRecord) *CustomerMatcher {
	return &CustomerMatcher{cfg: cfg, customers: customers}
}

// Match resolves a free-text customer name against the directory snapshot.
// Tiers: exact (business, then contact, then full name), containment either
// direction, fuzzy above the configured threshold.
func (m *CustomerMatcher) Match(freeTextName string) internal.CustomerMatch {
	norm := util.NormalizeText(freeTextName)
	if norm == "" || len(m.customers) == 0 {
		return internal.CustomerMatch{Confidence: internal.ConfidenceNone, Rule: internal.RuleNone}
	}

	// Field priority matters: a business-name hit on a later record beats a
	// contact-name hit on an earlier one.
	for _, field := range []func(internal.CustomerRecord) *string{
		func(r internal.CustomerRecord) *string { return r.BusinessName },
		func(r internal.CustomerRecord) *string { return r.ContactName },
		func(r internal.CustomerRecord) *string { return r.FullName },
	} {
		for i := range m.customers {
			if value := field(m.customers[i]); value != nil && util.NormalizeText(*value) == norm {
				return internal.CustomerMatch{Customer: &m.customers[i], Confidence: internal.ConfidenceExact, Rule: internal.RuleName, Score: 1}
			}
		}
	}

	for i := range m.customers {
		for _, value := range nameFields(m.customers[i]) {
			candidate := util.NormalizeText(value)
			if candidate == "" {
				continue
			}
			if strings.Contains(norm, candidate) || strings.Contains(candidate, norm) {
				return internal.CustomerMatch{Customer: &m.customers[i], Confidence: internal.ConfidenceHigh, Rule: internal.RulePartial, Score: 1}
			}
		}
	}

	var best *internal.CustomerRecord
	bestScore := 0.0
	for i := range m.customers {
		for _, value := range nameFields(m.customers[i]) {
			score := util.SimilarityWithContainment(freeTextName, value, m.cfg.MatchContainmentScore)
			if score > bestScore {
				bestScore = score
				best = &m.customers[i]
			}
		}
	}
	if best != nil && bestScore >= m.cfg.MatchCustomerThreshold {
		return internal.CustomerMatch{Customer: best, Confidence: internal.ConfidenceLow, Rule: internal.RulePartial, Score: bestScore}
	}

	return internal.CustomerMatch{Confidence: internal.ConfidenceNone, Rule: internal.RuleNone, Score: bestScore}
}

func nameFields(r internal.CustomerRecord) []string {
	out := make([]string, 0, 3)
	for _, v := range []*string{r.BusinessName, r.ContactName, r.FullName} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
