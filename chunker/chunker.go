package chunker

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Default sizes, measured in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Config controls the chunking behaviour.
type Config struct {
	ChunkSize    int      // Maximum characters per chunk.
	ChunkOverlap int      // Characters carried over between consecutive chunks. Negative disables overlap.
	Separators   []string // Split points in priority order; "" splits per character.
}

// Chunker splits a corpus into overlapping windows of bounded size.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
// Zero-value fields are replaced with sensible defaults.
func New(cfg Config) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	switch {
	case cfg.ChunkOverlap == 0:
		cfg.ChunkOverlap = DefaultChunkOverlap
	case cfg.ChunkOverlap < 0:
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators
	}
	return &Chunker{cfg: cfg}
}

// Config returns the effective configuration after defaults were applied.
func (c *Chunker) Config() Config {
	return c.cfg
}

// Split breaks text into chunks of at most ChunkSize characters, recursing
// through the separators until every piece fits. Consecutive chunks share up
// to ChunkOverlap characters. Chunks are trimmed and never empty.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := c.splitText(text, c.cfg.Separators)
	out := make([]string, 0, len(raw))
	for _, ch := range raw {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

// splitText picks the first separator present in text, splits on it and
// merges the pieces back into windows. Pieces that are still too long are
// split again with the remaining separators.
func (c *Chunker) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			next = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, s := range splitKeepSeparator(text, separator) {
		if runeLen(s) < c.cfg.ChunkSize {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			final = append(final, c.mergeSplits(good, "")...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, s)
		} else {
			final = append(final, c.splitText(s, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.mergeSplits(good, "")...)
	}
	return final
}

// mergeSplits combines small pieces into windows no longer than ChunkSize.
// When a window is emitted, pieces are dropped from its head until at most
// ChunkOverlap characters remain; those seed the next window.
func (c *Chunker) mergeSplits(splits []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		docs    []string
		current []string
		total   int
	)

	for _, d := range splits {
		n := runeLen(d)
		if total+n+joinCost(len(current), sepLen) > c.cfg.ChunkSize {
			if total > c.cfg.ChunkSize {
				slog.Debug("chunker: window exceeds chunk size",
					"size", total, "limit", c.cfg.ChunkSize)
			}
			if len(current) > 0 {
				if doc := joinDocs(current, sep); doc != "" {
					docs = append(docs, doc)
				}
				for total > c.cfg.ChunkOverlap ||
					(total+n+joinCost(len(current), sepLen) > c.cfg.ChunkSize && total > 0) {
					total -= runeLen(current[0]) + joinCost(len(current)-1, sepLen)
					current = current[1:]
				}
			}
		}
		current = append(current, d)
		total += n + joinCost(len(current)-1, sepLen)
	}

	if doc := joinDocs(current, sep); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// splitKeepSeparator splits text on sep and re-attaches the separator to the
// start of every piece after the first. An empty separator splits per rune.
func splitKeepSeparator(text, sep string) []string {
	var splits []string
	if sep == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
		return splits
	}
	parts := strings.Split(text, sep)
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			splits = append(splits, p)
		}
	}
	return splits
}

// joinDocs joins pieces with sep and trims the result.
func joinDocs(docs []string, sep string) string {
	return strings.TrimSpace(strings.Join(docs, sep))
}

// joinCost is the separator length paid when n pieces are already present.
func joinCost(n, sepLen int) int {
	if n > 0 {
		return sepLen
	}
	return 0
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
