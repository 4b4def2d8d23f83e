// Package retrieval turns a free-text question into an intent plus raw entity
// mentions, and maps those mentions onto graph nodes with fuzzy matching.
package retrieval

import (
	"regexp"
	"strings"

	"github.com/bbiangul/kgqa/graph"
)

// Intent is the kind of question being asked.
type Intent string

const (
	IntentRelationship Intent = "relationship"
	IntentWhatIs       Intent = "what_is"
	IntentWhoIs        Intent = "who_is"
	IntentGeneral      Intent = "general"
)

// QuestionPattern binds a question template to an intent. Every capture
// group of Pattern yields one mention.
type QuestionPattern struct {
	Intent  Intent
	Pattern *regexp.Regexp
}

// ---------------------------------------------------------------------------
// Question templates. Order is priority order: relationship templates must
// be tried before "what is" since they also start with "what is".
// ---------------------------------------------------------------------------
var QuestionPatterns = []QuestionPattern{
	{IntentRelationship, regexp.MustCompile(`(?i)what is the relationship between (.*?) and (.*?)\?`)},
	{IntentRelationship, regexp.MustCompile(`(?i)how is (.*?) related to (.*?)\?`)},
	{IntentWhatIs, regexp.MustCompile(`(?i)what is (.*?)\?`)},
	{IntentWhatIs, regexp.MustCompile(`(?i)what are (.*?)\?`)},
	{IntentWhoIs, regexp.MustCompile(`(?i)who is (.*?)\?`)},
	{IntentWhoIs, regexp.MustCompile(`(?i)who are (.*?)\?`)},
}

// questionWords are capitalised tokens that open a question and never name
// an entity.
var questionWords = map[string]bool{
	"What": true, "Who": true, "Where": true, "When": true,
	"How": true, "Why": true, "Which": true,
}

// Analysis is the classification of a question.
type Analysis struct {
	Intent   Intent   `json:"intent"`
	Mentions []string `json:"mentions"`
}

// Classify matches question against QuestionPatterns in order. The first
// template whose captures are all non-blank decides the intent, and its
// trimmed captures become the mentions. Otherwise the intent is general and
// the mentions are the capitalised runs and quoted spans of the question,
// minus question words.
func Classify(question string) Analysis {
	for _, qp := range QuestionPatterns {
		m := qp.Pattern.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		mentions := make([]string, 0, len(m)-1)
		for _, g := range m[1:] {
			if g = strings.TrimSpace(g); g != "" {
				mentions = append(mentions, g)
			}
		}
		if len(mentions) == len(m)-1 {
			return Analysis{Intent: qp.Intent, Mentions: mentions}
		}
	}

	var mentions []string
	for _, m := range graph.ExtractMentions(question) {
		if !questionWords[m] {
			mentions = append(mentions, m)
		}
	}
	return Analysis{Intent: IntentGeneral, Mentions: mentions}
}
