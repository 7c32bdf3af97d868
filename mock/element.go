package mock

import (
	"github.com/fwojciec/scrape"
)

var _ scrape.Element = (*Element)(nil)

// Element is a mock implementation of scrape.Element.
type Element struct {
	TagNameFn      func() string
	ParentFn       func() scrape.Element
	ChildrenFn     func() []scrape.Element
	SiblingsFn     func() []scrape.Element
	ChildNodesFn   func() []scrape.Node
	SiblingNodesFn func() []scrape.Node
	AttrsFn        func() map[string]string
	HasAttrFn      func(name string) bool
	AttrFn         func(name string) (string, error)
	LookupAttrFn   func(name string) (string, bool)
	TextFn         func() string
	InnerHTMLFn    func() string
	OuterHTMLFn    func() string
	SelectFn       func(selector string) *scrape.ElementQuery
}

func (e *Element) TagName() string {
	return e.TagNameFn()
}

func (e *Element) Parent() scrape.Element {
	return e.ParentFn()
}

func (e *Element) Children() []scrape.Element {
	return e.ChildrenFn()
}

func (e *Element) Siblings() []scrape.Element {
	return e.SiblingsFn()
}

func (e *Element) ChildNodes() []scrape.Node {
	return e.ChildNodesFn()
}

func (e *Element) SiblingNodes() []scrape.Node {
	return e.SiblingNodesFn()
}

func (e *Element) Attrs() map[string]string {
	return e.AttrsFn()
}

func (e *Element) HasAttr(name string) bool {
	return e.HasAttrFn(name)
}

func (e *Element) Attr(name string) (string, error) {
	return e.AttrFn(name)
}

func (e *Element) LookupAttr(name string) (string, bool) {
	return e.LookupAttrFn(name)
}

func (e *Element) Text() string {
	return e.TextFn()
}

func (e *Element) InnerHTML() string {
	return e.InnerHTMLFn()
}

func (e *Element) OuterHTML() string {
	return e.OuterHTMLFn()
}

func (e *Element) Select(selector string) *scrape.ElementQuery {
	return e.SelectFn(selector)
}
