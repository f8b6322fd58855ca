package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jyelen1110/Alfies-sub000/internal"
)

// The unmatched-items block is a versioned mini-format embedded in an
// order's free-text notes. Grammar changes here must stay readable by
// ParseUnmatchedBlock for blocks already persisted in the field.
//
//	[optional icon] UNMATCHED ITEMS (<n>):
//	- NAME xQTY (CODE)
//	- NAME (CODE)          legacy, quantity 1
//
// terminated by a blank line or end of the notes text.
const noCodeMarker = "no code"

var (
	reBlockHeader = regexp.MustCompile(`UNMATCHED ITEMS \(\d+\):`)
	reBlankLine   = regexp.MustCompile(`\n[ \t]*\n`)
	reFragment    = regexp.MustCompile("[\n•‣·]+")
	reItemWithQty = regexp.MustCompile(`^(.+?)\s+x(\d+)\s*\(([^()]*)\)$`)
	reItemLegacy  = regexp.MustCompile(`^(.+?)\s*\(([^()]*)\)$`)
)

// ParseUnmatchedBlock extracts the unmatched items recorded in a notes
// field. Fragments that fit neither grammar are dropped silently; historical
// notes may hold free text this parser cannot structure. Read-only: the
// caller removes the block once every item is resolved.
func ParseUnmatchedBlock(notes string) []internal.UnmatchedItem {
	loc := reBlockHeader.FindStringIndex(notes)
	if loc == nil {
		return nil
	}

	body := notes[loc[1]:]
	if end := reBlankLine.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}

	var items []internal.UnmatchedItem
	for _, fragment := range reFragment.Split(body, -1) {
		fragment = strings.TrimLeft(fragment, "-*–—• \t")
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}

		if m := reItemWithQty.FindStringSubmatch(fragment); m != nil {
			items = append(items, internal.UnmatchedItem{
				Name:     strings.TrimSpace(m[1]),
				Quantity: atoiOr(m[2], 1),
				Code:     codeOrNil(m[3]),
			})
			continue
		}
		if m := reItemLegacy.FindStringSubmatch(fragment); m != nil {
			items = append(items, internal.UnmatchedItem{
				Name:     strings.TrimSpace(m[1]),
				Quantity: 1,
				Code:     codeOrNil(m[2]),
			})
		}
	}
	return items
}

// FormatUnmatchedBlock renders the block the import pipeline writes into an
// order's notes when lines are left unresolved.
func FormatUnmatchedBlock(items []internal.UnmatchedItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ UNMATCHED ITEMS (%d):\n", len(items))
	for _, item := range items {
		code := noCodeMarker
		if item.Code != nil {
			code = *item.Code
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		fmt.Fprintf(&b, "- %s x%d (%s)\n", item.Name, qty, code)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RemoveUnmatchedBlock strips the block from the notes, keeping any
// surrounding free text.
func RemoveUnmatchedBlock(notes string) string {
	loc := reBlockHeader.FindStringIndex(notes)
	if loc == nil {
		return notes
	}

	// The block starts at the beginning of the header's line so a leading
	// icon on the same line is removed with it.
	start := strings.LastIndex(notes[:loc[0]], "\n") + 1

	end := len(notes)
	if m := reBlankLine.FindStringIndex(notes[loc[1]:]); m != nil {
		end = loc[1] + m[1]
	}

	before := strings.TrimSpace(notes[:start])
	after := strings.TrimSpace(notes[end:])
	switch {
	case before == "":
		return after
	case after == "":
		return before
	default:
		return before + "\n\n" + after
	}
}

func codeOrNil(raw string) *string {
	code := strings.TrimSpace(raw)
	if code == "" || strings.EqualFold(code, noCodeMarker) {
		return nil
	}
	return &code
}

func atoiOr(raw string, fallback int) int {
	n := 0
	for _, r := range raw {
		n = n*10 + int(r-'0')
	}
	if n < 1 {
		return fallback
	}
	return n
}
