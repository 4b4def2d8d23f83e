// Package parser extracts plain text from uploaded documents so it can be
// fed to the graph builder.
package parser

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedFormat is returned for file formats with no parser.
var ErrUnsupportedFormat = errors.New("parser: unsupported format")

// ParseResult is what a parser produces from a document file.
type ParseResult struct {
	Sections []Section // Ordered sections extracted from the document
	Method   string    // "native"
	Metadata map[string]string
}

// Section is one contiguous block of document text: a page, a sheet or a
// whole text file.
type Section struct {
	Heading    string
	Content    string
	PageNumber int
	Metadata   map[string]string
}

// Text joins the non-blank section contents with a blank line.
func (r *ParseResult) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		if c := strings.TrimSpace(s.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Parser can parse a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*ParseResult, error)
	SupportedFormats() []string
}
