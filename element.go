package scrape

// Node represents one child position in a DOM tree. It is a closed variant:
// the only implementations are ElementNode and TextNode. Other DOM node
// kinds (comments, doctypes) are filtered out by the backends and never
// surface as Node values.
type Node interface {
	node()
}

// ElementNode is a Node wrapping an element.
type ElementNode struct {
	Element Element
}

// TextNode is a Node carrying raw text content. The content is not
// whitespace-normalized; see Element.Text for flattened visible text.
type TextNode struct {
	Content string
}

func (ElementNode) node() {}
func (TextNode) node()    {}

// Element is the capability set every backend's element handles satisfy.
//
// Static-backend elements are projections of an immutable parsed tree. Live
// backend elements are handles into a mutable DOM: they hold at the instant
// of observation, and become unreliable once the underlying node leaves the
// DOM or the document reloads (see the rod package documentation).
type Element interface {
	// TagName returns the lowercase tag name.
	TagName() string

	// Parent returns the parent element, or nil at the tree root.
	Parent() Element

	// Children returns the child elements in document order.
	Children() []Element

	// Siblings returns the sibling elements in document order, excluding
	// the element itself.
	Siblings() []Element

	// ChildNodes returns the child element and text nodes in document order.
	ChildNodes() []Node

	// SiblingNodes returns the sibling element and text nodes in document
	// order, excluding the element itself.
	SiblingNodes() []Node

	// Attrs returns a copy of the attribute map.
	Attrs() map[string]string

	// HasAttr reports whether the attribute is present.
	HasAttr(name string) bool

	// Attr returns the attribute value.
	// Returns ENOTFOUND if the attribute is absent.
	Attr(name string) (string, error)

	// LookupAttr returns the attribute value and whether it is present.
	LookupAttr(name string) (string, bool)

	// Text returns the flattened visible text: text content collected
	// recursively, skipping script and style subtrees, with whitespace
	// runs collapsed to single spaces.
	Text() string

	// InnerHTML returns the serialized markup of the element's children.
	InnerHTML() string

	// OuterHTML returns the serialized markup of the element itself.
	OuterHTML() string

	// Select returns a lazy query over the element's descendants matching
	// the CSS selector. The element itself never matches.
	Select(selector string) *ElementQuery
}
