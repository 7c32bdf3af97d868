// Package readability extracts main content from HTML pages using the
// go-readability library.
package readability

import (
	"strings"

	"github.com/fwojciec/scrape"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements scrape.Extractor at compile time.
var _ scrape.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*scrape.ExtractResult, error) {
	if rawHTML == "" {
		return nil, scrape.Errorf(scrape.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, scrape.Errorf(scrape.EPARSE, "extract content: %v", err)
	}

	return &scrape.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
