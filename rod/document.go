package rod

import (
	"sync"

	"github.com/fwojciec/scrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ scrape.Document = (*Document)(nil)

// Document is a live view over a browser window. Nothing is cached
// beyond the current root wrapper: location, title, and contents are
// read from the window on every access, so scripted mutations and
// client-side navigations are always visible.
type Document struct {
	page *rod.Page

	// The window's DOM can be replaced wholesale (location change,
	// document.write). The root wrapper is keyed by the backing node's
	// identity and recomputed whenever the identity changes.
	mu     sync.Mutex
	rootID proto.DOMBackendNodeID
	root   scrape.Element
}

func newDocument(page *rod.Page) *Document {
	return &Document{page: page}
}

// Page exposes the underlying window for callers that need to go
// beyond the portable Document surface, e.g. to run scripts or take
// screenshots.
func (d *Document) Page() *rod.Page {
	return d.page
}

// Location returns the window's current URL, which can differ from the
// originally requested URL after redirects or scripted navigation.
func (d *Document) Location() string {
	info, err := d.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Root returns the current root element, normally <html>. The result is
// recomputed when the window's document has been replaced since the
// last call. Returns nil if the window no longer has a usable document.
func (d *Document) Root() scrape.Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := proto.DOMGetDocument{}.Call(d.page)
	if err != nil {
		return d.root
	}
	if d.root != nil && res.Root.BackendNodeID == d.rootID {
		return d.root
	}

	for _, c := range res.Root.Children {
		if c.NodeType == 1 {
			el, err := d.page.ElementFromNode(c)
			if err != nil {
				return nil
			}
			d.rootID = res.Root.BackendNodeID
			d.root = &Element{page: d.page, el: el}
			return d.root
		}
	}
	return nil
}

// Title returns the document's title with whitespace normalized, or the
// empty string if the document has none.
func (d *Document) Title() string {
	res, err := d.page.Eval(`() => document.title`)
	if err != nil {
		return ""
	}
	return normalizeText(res.Value.Str())
}

// Head returns the document's <head> element, or nil if there is none.
func (d *Document) Head() scrape.Element {
	return d.childElement("head")
}

// Body returns the document's <body> element, or nil if there is none.
func (d *Document) Body() scrape.Element {
	return d.childElement("body")
}

// HTML returns the serialized form of the current document as rendered
// by the engine.
func (d *Document) HTML() string {
	h, err := d.page.HTML()
	if err != nil {
		return ""
	}
	return h
}

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
