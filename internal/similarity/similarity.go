// Package similarity provides the sequence-matching ratio used for fuzzy
// candidate comparisons.
package similarity

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns 2*M/T where M is the number of characters in the longest
// matching blocks of a and b and T is their combined length. The result is in
// [0,1], symmetric, and 1.0 only for identical strings.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	// Block matching may break ties differently depending on argument order.
	if b < a {
		a, b = b, a
	}

	return difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil).Ratio()
}

// Prefix returns at most n leading runes of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
