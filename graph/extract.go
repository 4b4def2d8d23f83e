package graph

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Surface patterns for entity mentions.
// ---------------------------------------------------------------------------

// Double-quoted spans, quotes stripped: "Machine Learning Basics".
var reQuoted = regexp.MustCompile(`"([^"]*)"`)

// isWordRune reports whether r belongs to a word in any script.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// capitalizedRuns returns the runs of capitalised ASCII words (John, Larry
// Page, Stanford University) that start and end on a word boundary in any
// script. A run cut short by a non-ASCII letter is shortened to its last
// complete word, so "Larry Pagé" yields "Larry" and "Renée" nothing.
func capitalizedRuns(text string) []string {
	rs := []rune(text)
	var runs []string
	for i := 0; i < len(rs); i++ {
		if !isUpper(rs[i]) || (i > 0 && isWordRune(rs[i-1])) {
			continue
		}
		end := -1
		for j := i; j < len(rs) && isUpper(rs[j]); {
			k := j + 1
			for k < len(rs) && isLower(rs[k]) {
				k++
			}
			if k == j+1 {
				break
			}
			if k == len(rs) || !isWordRune(rs[k]) {
				end = k
			}
			if k < len(rs) && rs[k] == ' ' {
				j = k + 1
				continue
			}
			break
		}
		if end < 0 {
			continue
		}
		runs = append(runs, string(rs[i:end]))
		i = end - 1
	}
	return runs
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// stopwords are capitalised determiners that are never entities.
var stopwords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"A": true, "An": true,
}

// minEntityLen is the shortest label kept; anything this long or shorter is
// dropped.
const minEntityLen = 2

// ExtractMentions returns every capitalised run followed by every quoted span
// found in text, in match order, duplicates included and unfiltered.
func ExtractMentions(text string) []string {
	mentions := capitalizedRuns(text)
	for _, m := range reQuoted.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, m[1])
	}
	return mentions
}

// ExtractEntities returns the candidate entity labels of a chunk: the union
// of capitalised runs and quoted spans, minus stopwords and labels of two
// characters or fewer. The result is sorted and free of duplicates.
func ExtractEntities(text string) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, m := range ExtractMentions(text) {
		if seen[m] || stopwords[m] || utf8.RuneCountInString(m) <= minEntityLen {
			continue
		}
		seen[m] = true
		entities = append(entities, m)
	}
	sort.Strings(entities)
	return entities
}

// ---------------------------------------------------------------------------
// Relation pattern table. Order is priority order.
// ---------------------------------------------------------------------------

// RelationPattern pairs a subject/predicate/object template with the label
// given to the edges it produces. Group 1 is the subject, group 2 the object.
type RelationPattern struct {
	Label   string
	Pattern *regexp.Regexp
}

// phrase is a run of words in any script, used for both subject and object.
const phrase = `([\p{L}\p{N}_]+(?:\s+[\p{L}\p{N}_]+)*)`

func relationPattern(label, predicate string) RelationPattern {
	return RelationPattern{
		Label:   label,
		Pattern: regexp.MustCompile(`(?i)` + phrase + `\s+` + predicate + `\s+` + phrase),
	}
}

// RelationPatterns is the ordered extraction table.
var RelationPatterns = []RelationPattern{
	relationPattern(RelIsA, `is\s+(?:a|an)`),
	relationPattern(RelHas, `has`),
	relationPattern(RelWorksAt, `works\s+at`),
	relationPattern(RelLivesIn, `lives\s+in`),
	relationPattern(RelFounded, `founded`),
	relationPattern(RelCreated, `created`),
}

// ExtractRelations applies RelationPatterns to text in table order and keeps
// every match whose subject and object each overlap one of the chunk's
// entities (case-insensitive substring in either direction).
func ExtractRelations(text string, entities []string) []Triple {
	triples, _ := extractRelations(text, entities)
	return triples
}

// extractRelations is ExtractRelations that also counts the matches rejected
// by the entity-overlap filter.
func extractRelations(text string, entities []string) ([]Triple, int) {
	lowered := make([]string, len(entities))
	for i, e := range entities {
		lowered[i] = strings.ToLower(e)
	}

	var (
		triples  []Triple
		rejected int
	)
	for _, rp := range RelationPatterns {
		for _, m := range rp.Pattern.FindAllStringSubmatch(text, -1) {
			subject := strings.TrimSpace(m[1])
			object := strings.TrimSpace(m[2])
			if !overlapsAny(subject, lowered) || !overlapsAny(object, lowered) {
				rejected++
				continue
			}
			triples = append(triples, Triple{Subject: subject, Predicate: rp.Label, Object: object})
		}
	}
	return triples, rejected
}

// overlapsAny reports whether s and any of the lowercased labels contain one
// another.
func overlapsAny(s string, lowered []string) bool {
	ls := strings.ToLower(s)
	for _, e := range lowered {
		if strings.Contains(e, ls) || strings.Contains(ls, e) {
			return true
		}
	}
	return false
}

// BestEntityMatch maps a raw mention onto one of the given labels: an exact
// case-insensitive match wins, otherwise the shortest label that contains or
// is contained by the mention (ties broken lexicographically).
func BestEntityMatch(mention string, entities []string) (string, bool) {
	for _, e := range entities {
		if strings.EqualFold(e, mention) {
			return e, true
		}
	}

	lm := strings.ToLower(mention)
	best, found := "", false
	for _, e := range entities {
		le := strings.ToLower(e)
		if !strings.Contains(le, lm) && !strings.Contains(lm, le) {
			continue
		}
		if !found || shorterOrFirst(e, best) {
			best, found = e, true
		}
	}
	return best, found
}

// shorterOrFirst orders labels by rune length, then lexicographically.
func shorterOrFirst(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
