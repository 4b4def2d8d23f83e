package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dataset is a corpus plus the questions to ask about it.
type Dataset struct {
	Name  string     `json:"name" yaml:"name"`
	Texts []string   `json:"texts" yaml:"texts"`
	Tests []TestCase `json:"tests" yaml:"tests"`
}

// TestCase defines a single evaluation question.
type TestCase struct {
	Question      string   `json:"question" yaml:"question"`
	ExpectedFacts []string `json:"expected_facts" yaml:"expected_facts"` // Facts that should appear in the answer
	Intent        string   `json:"intent,omitempty" yaml:"intent,omitempty"`
	Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
}

// LoadDataset reads a YAML (or JSON) dataset file.
func LoadDataset(path string) (Dataset, error) {
	var ds Dataset
	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("eval.LoadDataset: %w", err)
	}
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return ds, fmt.Errorf("eval.LoadDataset: parsing %s: %w", path, err)
	}
	if len(ds.Texts) == 0 || len(ds.Tests) == 0 {
		return ds, fmt.Errorf("eval.LoadDataset: %s needs texts and tests", path)
	}
	if ds.Name == "" {
		ds.Name = path
	}
	return ds, nil
}

// BuiltinDataset is a small corpus exercising every answer path: entity
// descriptions, direct and missing relationships, unknown entities and
// neighbourhood summaries.
func BuiltinDataset() Dataset {
	return Dataset{
		Name: "Builtin - Companies and People",
		Texts: []string{
			"Larry Page founded Google. Sergey Brin founded Google.",
			"Guido created Python.",
			"Alice works at Acme. Alice lives in Paris.",
		},
		Tests: []TestCase{
			{
				Question:      "What is Google?",
				ExpectedFacts: []string{"Larry Page founded Google", "Sergey Brin founded Google"},
				Intent:        "what_is",
				Category:      "describe",
			},
			{
				Question:      "Who is Alice?",
				ExpectedFacts: []string{"works_at Acme|works at Acme", "lives_in Paris|lives in Paris"},
				Intent:        "who_is",
				Category:      "describe",
			},
			{
				Question:      "What is the relationship between Guido and Python?",
				ExpectedFacts: []string{"Guido created Python"},
				Intent:        "relationship",
				Category:      "relationship",
			},
			{
				Question:      "How is Larry Page related to Sergey Brin?",
				ExpectedFacts: []string{"No relationship found"},
				Intent:        "relationship",
				Category:      "relationship",
			},
			{
				Question:      "What is Microsoft?",
				ExpectedFacts: []string{"don't have information"},
				Intent:        "what_is",
				Category:      "unknown",
			},
			{
				Question:      "Where does Alice live?",
				ExpectedFacts: []string{"Acme", "Paris"},
				Intent:        "general",
				Category:      "summary",
			},
		},
	}
}
