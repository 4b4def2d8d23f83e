package eval

import (
	"strings"
	"unicode"
)

// normalizeText maps Unicode whitespace to ASCII spaces, Unicode hyphens to
// ASCII hyphens and strips zero-width characters.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r == '\u2010' || r == '\u2011' || r == '\u2012' || r == '\u2013' || r == '\u2014':
			b.WriteByte('-')
		case r == '\u200B' || r == '\u200C' || r == '\u200D' || r == '\uFEFF':
			// stripped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// computeAccuracy is the fraction of expected facts found in the answer.
// Each fact may hold pipe-separated alternatives ("works_at Acme|works at
// Acme"); any alternative counts as a hit.
func computeAccuracy(answer string, expectedFacts []string) float64 {
	if answer == "" || len(expectedFacts) == 0 {
		return 0
	}

	normalized := normalizeText(strings.ToLower(answer))
	spaceless := strings.ReplaceAll(normalized, " ", "")
	found := 0
	for _, fact := range expectedFacts {
		for _, alt := range strings.Split(fact, "|") {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				continue
			}
			normAlt := normalizeText(strings.ToLower(alt))
			if strings.Contains(normalized, normAlt) ||
				strings.Contains(spaceless, strings.ReplaceAll(normAlt, " ", "")) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(expectedFacts))
}

// computeResolution is the fraction of question mentions that resolved to
// a graph entity. A question without mentions scores zero.
func computeResolution(mentions, resolved int) float64 {
	if mentions == 0 {
		return 0
	}
	return clamp(float64(resolved) / float64(mentions))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
