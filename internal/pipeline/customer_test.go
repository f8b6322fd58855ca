package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyelen1110/Alfies-sub000/internal"
)

func customer(id string, business, contact, full string) internal.CustomerRecord {
	rec := internal.CustomerRecord{ID: id, Tenant: "t1", Email: id + "@example.com"}
	if business != "" {
		rec.BusinessName = internal.StringPtr(business)
	}
	if contact != "" {
		rec.ContactName = internal.StringPtr(contact)
	}
	if full != "" {
		rec.FullName = internal.StringPtr(full)
	}
	return rec
}

func TestCustomerExactBusinessNameBeatsEarlierContactName(t *testing.T) {
	directory := []internal.CustomerRecord{
		customer("C1", "", "Acme Pty Ltd", ""),
		customer("C2", "Acme Pty Ltd", "", ""),
	}
	m := NewCustomerMatcher(testConfig(), directory)

	res := m.Match("  acme pty ltd ")
	require.NotNil(t, res.Customer)
	assert.Equal(t, "C2", res.Customer.ID)
	assert.Equal(t, internal.ConfidenceExact, res.Confidence)
}

func TestCustomerPartialContainment(t *testing.T) {
	directory := []internal.CustomerRecord{
		customer("C1", "Northside Grocers", "", ""),
	}
	m := NewCustomerMatcher(testConfig(), directory)

	res := m.Match("Northside Grocers (Main St)")
	require.NotNil(t, res.Customer)
	assert.Equal(t, internal.ConfidenceHigh, res.Confidence)
	assert.Equal(t, internal.RulePartial, res.Rule)
}

func TestCustomerFuzzyThreshold(t *testing.T) {
	m := NewCustomerMatcher(testConfig(), []internal.CustomerRecord{
		customer("C1", "abcdefghij", "", ""),
	})

	// similarity 0.70 is in.
	res := m.Match("abcdefgxxx")
	require.NotNil(t, res.Customer)
	assert.Equal(t, internal.ConfidenceLow, res.Confidence)
	assert.Equal(t, internal.RulePartial, res.Rule)

	// similarity 0.60 is out.
	res = m.Match("abcdefxxxx")
	assert.Nil(t, res.Customer)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}

func TestCustomerEmptyInputShortCircuits(t *testing.T) {
	m := NewCustomerMatcher(testConfig(), []internal.CustomerRecord{
		customer("C1", "Acme Pty Ltd", "", ""),
	})
	res := m.Match("   ")
	assert.Nil(t, res.Customer)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)

	empty := NewCustomerMatcher(testConfig(), nil)
	res = empty.Match("Acme Pty Ltd")
	assert.Nil(t, res.Customer)
	assert.Equal(t, internal.ConfidenceNone, res.Confidence)
}
