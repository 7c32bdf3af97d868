// Package goquery implements the snapshot document backend.
// Documents are parsed once into an in-memory DOM and never change
// afterwards; queries and traversals walk the parsed tree directly.
package goquery

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrape"
)

// Parse reads HTML from r and returns an immutable snapshot document.
// The location is recorded as the document's address; Parse performs
// no fetching.
func Parse(r io.Reader, location string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, scrape.Errorf(scrape.EPARSE, "failed to parse HTML: %v", err)
	}
	return &Document{location: location, root: doc.Get(0)}, nil
}
