package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Core splitter tests
// ---------------------------------------------------------------------------

func TestSplitShortText(t *testing.T) {
	c := New(Config{})
	text := "  John works at Microsoft. He lives in Seattle.  "

	chunks := c.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != strings.TrimSpace(text) {
		t.Errorf("chunk = %q, want %q", chunks[0], strings.TrimSpace(text))
	}
}

func TestSplitEmpty(t *testing.T) {
	c := New(Config{})
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if got := c.Split(text); len(got) != 0 {
			t.Errorf("Split(%q) = %q, want no chunks", text, got)
		}
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	c := New(Config{ChunkSize: 50, ChunkOverlap: 10})

	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("alpha beta gamma delta ")
	}

	chunks := c.Split(sb.String())

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if n := utf8.RuneCountInString(ch); n > 50 {
			t.Errorf("chunk %d has %d characters, limit 50: %q", i, n, ch)
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	c := New(Config{ChunkSize: 50, ChunkOverlap: 10})

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("alpha beta gamma delta ")
	}

	chunks := c.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		if prev[len(prev)-1] != cur[0] {
			t.Errorf("chunk %d should start with the last word of chunk %d: prev=%q cur=%q",
				i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	c := New(Config{ChunkSize: 60, ChunkOverlap: 10})
	p1 := "Alice is a researcher at the institute."
	p2 := "Bob founded a small bakery downtown."

	chunks := c.Split(p1 + "\n\n" + p2)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != p1 {
		t.Errorf("chunks[0] = %q, want %q", chunks[0], p1)
	}
	if chunks[1] != p2 {
		t.Errorf("chunks[1] = %q, want %q", chunks[1], p2)
	}
}

func TestSplitCharacterFallback(t *testing.T) {
	c := New(Config{ChunkSize: 10, ChunkOverlap: 2})

	chunks := c.Split(strings.Repeat("x", 25))

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) > 10 {
			t.Errorf("chunk %d too long: %d", i, len(ch))
		}
	}
}

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantSize    int
		wantOverlap int
	}{
		{"zero", Config{}, DefaultChunkSize, DefaultChunkOverlap},
		{"custom", Config{ChunkSize: 300, ChunkOverlap: 30}, 300, 30},
		{"no_overlap", Config{ChunkSize: 300, ChunkOverlap: -1}, 300, 0},
		{"overlap_clamped", Config{ChunkSize: 100, ChunkOverlap: 150}, 100, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.cfg).Config()
			if got.ChunkSize != tt.wantSize {
				t.Errorf("ChunkSize = %d, want %d", got.ChunkSize, tt.wantSize)
			}
			if got.ChunkOverlap != tt.wantOverlap {
				t.Errorf("ChunkOverlap = %d, want %d", got.ChunkOverlap, tt.wantOverlap)
			}
			if len(got.Separators) == 0 {
				t.Error("Separators should default to a non-empty list")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestSplitKeepSeparator(t *testing.T) {
	tests := []struct {
		name string
		text string
		sep  string
		want []string
	}{
		{"words", "a b c", " ", []string{"a", " b", " c"}},
		{"leading", " a", " ", []string{" a"}},
		{"paragraphs", "x\n\ny", "\n\n", []string{"x", "\n\ny"}},
		{"runes", "héj", "", []string{"h", "é", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitKeepSeparator(tt.text, tt.sep)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitKeepSeparator(%q, %q) = %q, want %q", tt.text, tt.sep, got, tt.want)
			}
		})
	}
}
