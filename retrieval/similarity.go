package retrieval

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the similarity of a and b as 2*M/T, where T is the total
// number of runes in both strings and M the number of runes in their
// matching blocks (Ratcliff/Obershelp). When b is at least 200 runes long,
// runes occurring in more than 1% of b are not used to seed a match. Two
// empty strings are identical.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

// runeStrings splits s into one element per rune.
func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
