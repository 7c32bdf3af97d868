package goquery

import (
	"slices"
	"strings"

	"github.com/fwojciec/scrape"
	"golang.org/x/net/html"
)

var _ scrape.Element = Element{}

// Element wraps a node in a parsed snapshot. It is a value type: two
// Elements are equal iff they wrap the same underlying node.
type Element struct {
	n *html.Node
}

// TagName returns the element's lowercase tag name.
func (e Element) TagName() string {
	return e.n.Data
}

// Parent returns the parent element, or nil for the root element.
func (e Element) Parent() scrape.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return Element{n: p}
}

// Children returns the element's child elements in document order.
func (e Element) Children() []scrape.Element {
	var children []scrape.Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, Element{n: c})
		}
	}
	return children
}

// ChildNodes returns the element's child elements and text nodes in
// document order. Comments and other node types are omitted.
func (e Element) ChildNodes() []scrape.Node {
	var nodes []scrape.Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			nodes = append(nodes, scrape.ElementNode{Element: Element{n: c}})
		case html.TextNode:
			nodes = append(nodes, scrape.TextNode{Content: c.Data})
		}
	}
	return nodes
}

// Siblings returns the element's sibling elements in document order,
// excluding the element itself.
func (e Element) Siblings() []scrape.Element {
	var before []scrape.Element
	for c := e.n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			before = append(before, Element{n: c})
		}
	}
	slices.Reverse(before)
	for c := e.n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			before = append(before, Element{n: c})
		}
	}
	return before
}

// SiblingNodes returns the element's sibling elements and text nodes in
// document order, excluding the element itself.
func (e Element) SiblingNodes() []scrape.Node {
	var before []scrape.Node
	for c := e.n.PrevSibling; c != nil; c = c.PrevSibling {
		if n, ok := wrapNode(c); ok {
			before = append(before, n)
		}
	}
	slices.Reverse(before)
	for c := e.n.NextSibling; c != nil; c = c.NextSibling {
		if n, ok := wrapNode(c); ok {
			before = append(before, n)
		}
	}
	return before
}

// Attrs returns a copy of the element's attributes.
func (e Element) Attrs() map[string]string {
	attrs := make(map[string]string, len(e.n.Attr))
	for _, a := range e.n.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// HasAttr returns true if the attribute is present, even when empty.
func (e Element) HasAttr(name string) bool {
	_, ok := e.LookupAttr(name)
	return ok
}

// Attr returns the attribute's value. It returns ENOTFOUND if the
// attribute is absent.
func (e Element) Attr(name string) (string, error) {
	v, ok := e.LookupAttr(name)
	if !ok {
		return "", scrape.Errorf(scrape.ENOTFOUND, "attribute %q not found on <%s>", name, e.TagName())
	}
	return v, nil
}

// LookupAttr returns the attribute's value and whether it is present.
func (e Element) LookupAttr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the element's text content with whitespace normalized:
// runs of whitespace collapse to a single space and the ends are
// trimmed. Script and style contents are excluded.
func (e Element) Text() string {
	var b strings.Builder
	collectText(e.n, &b)
	return normalizeText(b.String())
}

// InnerHTML returns the serialized form of the element's contents.
func (e Element) InnerHTML() string {
	var b strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}

// OuterHTML returns the serialized form of the element itself.
func (e Element) OuterHTML() string {
	var b strings.Builder
	if err := html.Render(&b, e.n); err != nil {
		return ""
	}
	return b.String()
}

// Select returns a query for the given CSS selector rooted at this
// element. The query matches descendants only.
func (e Element) Select(selector string) *scrape.ElementQuery {
	return scrape.NewElementQuery(selector, e, Eval)
}

func wrapNode(n *html.Node) (scrape.Node, bool) {
	switch n.Type {
	case html.ElementNode:
		return scrape.ElementNode{Element: Element{n: n}}, true
	case html.TextNode:
		return scrape.TextNode{Content: n.Data}, true
	}
	return nil, false
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
