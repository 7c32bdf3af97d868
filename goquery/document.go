package goquery

import (
	"strings"

	"github.com/fwojciec/scrape"
	"golang.org/x/net/html"
)

var _ scrape.Document = (*Document)(nil)

// Document is a parsed HTML snapshot.
type Document struct {
	location string
	root     *html.Node
}

// Location returns the address the document was loaded from.
func (d *Document) Location() string {
	return d.location
}

// Root returns the document's root element, normally <html>.
func (d *Document) Root() scrape.Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return Element{n: c}
		}
	}
	return nil
}

// Title returns the normalized text of the document's <title> element,
// or the empty string if there is none.
func (d *Document) Title() string {
	root := d.Root()
	if root == nil {
		return ""
	}
	title, ok := root.Select("title").First()
	if !ok {
		return ""
	}
	return title.Text()
}

// Head returns the document's <head> element, or nil if there is none.
func (d *Document) Head() scrape.Element {
	return d.childElement("head")
}

// Body returns the document's <body> element, or nil if there is none.
func (d *Document) Body() scrape.Element {
	return d.childElement("body")
}

// HTML returns the serialized form of the entire document.
func (d *Document) HTML() string {
	var b strings.Builder
	if err := html.Render(&b, d.root); err != nil {
		return ""
	}
	return b.String()
}

// childElement finds a direct element child of the root element by tag name.
func (d *Document) childElement(name string) scrape.Element {
	root := d.Root()
	if root == nil {
		return nil
	}
	for _, c := range root.Children() {
		if c.TagName() == name {
			return c
		}
	}
	return nil
}
