package util

import "strings"

// DefaultContainmentScore is the fixed score awarded when one normalized
// string fully contains the other. Containment is treated as near-certain
// relatedness regardless of the length difference, so the score is a
// constant rather than derived from edit distance. Empirical; tune via
// config (MATCH_CONTAINMENT_SCORE) rather than editing here.
const DefaultContainmentScore = 0.85

// Similarity scores two strings in [0,1] with the default containment score.
func Similarity(a, b string) float64 {
	return SimilarityWithContainment(a, b, DefaultContainmentScore)
}

// SimilarityWithContainment is symmetric, returns 0 when either input is
// empty, 1 for normalized-equal inputs, the containment score when one
// normalized string contains the other, and otherwise normalized Levenshtein
// similarity 1 - dist/max(len).
func SimilarityWithContainment(a, b string, containment float64) float64 {
	if a == "" || b == "" {
		return 0
	}

	na := NormalizeText(a)
	nb := NormalizeText(b)
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return containment
	}

	ra := []rune(na)
	rb := []rune(nb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with unit insert/delete/substitute
// costs, keeping only the previous DP row.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out
}
