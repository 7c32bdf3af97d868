package rod

import (
	"html"
	"iter"
	"slices"
	"strings"

	"github.com/fwojciec/scrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ scrape.Element = (*Element)(nil)

// Element wraps a node handle in a live window. The handle does not pin
// the node: if scripts remove or replace it, operations on the wrapper
// return zero values. Staleness is not reliably detectable, so holding
// wrappers across DOM mutations is a documented hazard.
type Element struct {
	page *rod.Page
	el   *rod.Element
}

// TagName returns the element's lowercase tag name.
func (e *Element) TagName() string {
	node, err := e.describe(0)
	if err != nil {
		return ""
	}
	return strings.ToLower(node.NodeName)
}

// Parent returns the parent element, or nil for the root element.
func (e *Element) Parent() scrape.Element {
	p, err := e.el.Parent()
	if err != nil {
		return nil
	}
	return &Element{page: e.page, el: p}
}

// Children returns the element's child elements in document order.
func (e *Element) Children() []scrape.Element {
	node, err := e.describe(1)
	if err != nil {
		return nil
	}
	var children []scrape.Element
	for _, c := range node.Children {
		if c.NodeType != 1 {
			continue
		}
		el, err := e.page.ElementFromNode(c)
		if err != nil {
			continue
		}
		children = append(children, &Element{page: e.page, el: el})
	}
	return children
}

// ChildNodes returns the element's child elements and text nodes in
// document order. Comments and other node types are omitted.
func (e *Element) ChildNodes() []scrape.Node {
	node, err := e.describe(1)
	if err != nil {
		return nil
	}
	var nodes []scrape.Node
	for _, c := range node.Children {
		if n, ok := e.wrapNode(c); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Siblings returns the element's sibling elements in document order,
// excluding the element itself.
func (e *Element) Siblings() []scrape.Element {
	var siblings []scrape.Element
	for cur := e.el; ; {
		prev, err := cur.Previous()
		if err != nil {
			break
		}
		siblings = append(siblings, &Element{page: e.page, el: prev})
		cur = prev
	}
	slices.Reverse(siblings)
	for cur := e.el; ; {
		next, err := cur.Next()
		if err != nil {
			break
		}
		siblings = append(siblings, &Element{page: e.page, el: next})
		cur = next
	}
	return siblings
}

// SiblingNodes returns the element's sibling elements and text nodes in
// document order, excluding the element itself.
func (e *Element) SiblingNodes() []scrape.Node {
	self, err := e.describe(0)
	if err != nil {
		return nil
	}
	parent, err := e.el.Parent()
	if err != nil {
		return nil
	}
	pnode, err := parent.Describe(1, false)
	if err != nil {
		return nil
	}
	var nodes []scrape.Node
	for _, c := range pnode.Children {
		if c.BackendNodeID == self.BackendNodeID {
			continue
		}
		if n, ok := e.wrapNode(c); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Attrs returns a copy of the element's attributes.
func (e *Element) Attrs() map[string]string {
	pairs := e.attrPairs()
	attrs := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		attrs[kv[0]] = kv[1]
	}
	return attrs
}

// HasAttr returns true if the attribute is present, even when empty.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.LookupAttr(name)
	return ok
}

// Attr returns the attribute's value. It returns ENOTFOUND if the
// attribute is absent.
func (e *Element) Attr(name string) (string, error) {
	v, ok := e.LookupAttr(name)
	if !ok {
		return "", scrape.Errorf(scrape.ENOTFOUND, "attribute %q not found on <%s>", name, e.TagName())
	}
	return v, nil
}

// LookupAttr returns the attribute's value and whether it is present.
func (e *Element) LookupAttr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

// Text returns the element's rendered text with whitespace normalized.
func (e *Element) Text() string {
	t, err := e.el.Text()
	if err != nil {
		return ""
	}
	return normalizeText(t)
}

// InnerHTML returns a serialization of the element's contents,
// synthesized from the node model rather than read from the engine, so
// its shape matches what the traversal operations expose.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for _, n := range e.ChildNodes() {
		writeNode(&b, n)
	}
	return b.String()
}

// OuterHTML returns a synthesized serialization of the element itself.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	e.writeTo(&b)
	return b.String()
}

// Select returns a query for the given CSS selector rooted at this
// element. The query matches descendants only.
func (e *Element) Select(selector string) *scrape.ElementQuery {
	return scrape.NewElementQuery(selector, e, Eval)
}

// Eval evaluates a CSS selector against a live element via the engine's
// querySelectorAll. Matches are yielded in document order and cover
// descendants only. Evaluation happens anew each time the sequence is
// iterated, so results track the current DOM. A selector the engine
// rejects yields nothing, as does a root from a different backend.
func Eval(selector string, root scrape.Element) iter.Seq[scrape.Element] {
	return func(yield func(scrape.Element) bool) {
		el, ok := root.(*Element)
		if !ok {
			return
		}
		matches, err := el.el.Elements(selector)
		if err != nil {
			return
		}
		for _, m := range matches {
			if !yield(&Element{page: el.page, el: m}) {
				return
			}
		}
	}
}

func (e *Element) describe(depth int) (*proto.DOMNode, error) {
	return e.el.Describe(depth, false)
}

// attrPairs returns attributes as name/value pairs in the order the
// engine reports them.
func (e *Element) attrPairs() [][2]string {
	node, err := e.describe(0)
	if err != nil {
		return nil
	}
	pairs := make([][2]string, 0, len(node.Attributes)/2)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		pairs = append(pairs, [2]string{node.Attributes[i], node.Attributes[i+1]})
	}
	return pairs
}

func (e *Element) wrapNode(c *proto.DOMNode) (scrape.Node, bool) {
	switch c.NodeType {
	case 1:
		el, err := e.page.ElementFromNode(c)
		if err != nil {
			return nil, false
		}
		return scrape.ElementNode{Element: &Element{page: e.page, el: el}}, true
	case 3:
		return scrape.TextNode{Content: c.NodeValue}, true
	}
	return nil, false
}

func (e *Element) writeTo(b *strings.Builder) {
	tag := e.TagName()
	if tag == "" {
		return
	}
	b.WriteByte('<')
	b.WriteString(tag)
	for _, kv := range e.attrPairs() {
		b.WriteByte(' ')
		b.WriteString(kv[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(kv[1]))
		b.WriteByte('"')
	}
	if voidElements[tag] {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, n := range e.ChildNodes() {
		writeNode(b, n)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func writeNode(b *strings.Builder, n scrape.Node) {
	switch n := n.(type) {
	case scrape.TextNode:
		b.WriteString(html.EscapeString(n.Content))
	case scrape.ElementNode:
		if el, ok := n.Element.(*Element); ok {
			el.writeTo(b)
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
