package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reSpaces     = regexp.MustCompile(`\s+`)
	reApostrophe = regexp.MustCompile("[’‘`´]")
	reISODate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reSlashDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// NormalizeText lowercases, collapses whitespace runs to single spaces and
// trims both ends. Idempotent.
func NormalizeText(input string) string {
	s := strings.ToLower(input)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeProductName additionally canonicalizes curly apostrophes so that
// "Alfie’s" and "Alfie's" normalize to the same key.
func NormalizeProductName(input string) string {
	return NormalizeText(reApostrophe.ReplaceAllString(input, "'"))
}

// NormalizeBarcode removes all whitespace and strips leading zeros. An empty
// result must never be used as a match key; callers short-circuit on it.
func NormalizeBarcode(input string) string {
	s := reSpaces.ReplaceAllString(input, "")
	return strings.TrimLeft(s, "0")
}

// NormalizeDate converts D/M/YYYY input to zero-padded ISO form and passes
// YYYY-MM-DD through unchanged. Anything else falls back to today's date; the
// fallback is deliberately lossy, so callers that need strictness validate
// the raw string first.
func NormalizeDate(input string) string {
	s := strings.TrimSpace(input)
	if reISODate.MatchString(s) {
		return s
	}
	if m := reSlashDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}
	return time.Now().Format("2006-01-02")
}

// RoundCents rounds a money amount to two decimal places.
func RoundCents(v float64) float64 {
	if v < 0 {
		return -RoundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
