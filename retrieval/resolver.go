package retrieval

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/bbiangul/kgqa/graph"
)

// DefaultThreshold is the minimum Ratio for a similarity candidate.
const DefaultThreshold = 0.6

// Resolver maps raw mentions onto node labels of one graph. It only reads
// the graph and is safe for concurrent use.
type Resolver struct {
	labels    []string // sorted
	threshold float64
}

// NewResolver creates a resolver over g. A non-positive threshold uses
// DefaultThreshold.
func NewResolver(g *graph.Graph, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	labels := g.Labels()
	sort.Strings(labels)
	return &Resolver{labels: labels, threshold: threshold}
}

// Threshold returns the similarity cut-off in use.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

type candidate struct {
	label     string
	contained bool
	ratio     float64
	distance  int
}

// Resolve returns the node labels matching mention, best first.
//
// A label equal to the mention ignoring case is returned alone. Otherwise a
// label is a candidate when it contains or is contained by the mention, and
// again when its Ratio to the mention reaches the threshold, so a label may
// appear twice. Candidates are ordered containment hits first, then by
// higher ratio, lower edit distance, shorter label and finally label order.
// A blank mention resolves to nothing.
func (r *Resolver) Resolve(mention string) []string {
	lm := strings.ToLower(mention)
	if strings.TrimSpace(lm) == "" {
		return nil
	}

	var cands []candidate
	for _, label := range r.labels {
		ll := strings.ToLower(label)
		if ll == lm {
			return []string{label}
		}

		ratio := Ratio(lm, ll)
		var dist int
		contained := strings.Contains(ll, lm) || strings.Contains(lm, ll)
		if contained || ratio >= r.threshold {
			dist = levenshtein.ComputeDistance(lm, ll)
		}
		if contained {
			cands = append(cands, candidate{label, true, ratio, dist})
		}
		if ratio >= r.threshold {
			cands = append(cands, candidate{label, false, ratio, dist})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.contained != b.contained {
			return a.contained
		}
		if a.ratio != b.ratio {
			return a.ratio > b.ratio
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if la, lb := utf8.RuneCountInString(a.label), utf8.RuneCountInString(b.label); la != lb {
			return la < lb
		}
		return a.label < b.label
	})

	if len(cands) == 0 {
		return nil
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.label
	}
	return out
}

// Best returns the top candidate for mention.
func (r *Resolver) Best(mention string) (string, bool) {
	cands := r.Resolve(mention)
	if len(cands) == 0 {
		return "", false
	}
	return cands[0], true
}
