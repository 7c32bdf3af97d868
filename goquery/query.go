package goquery

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/scrape"
)

// Eval evaluates a CSS selector against a snapshot element. Matches are
// yielded in document order and cover descendants only, never the root
// itself. The selector compiles once; matching happens anew each time
// the sequence is iterated. A selector that fails to compile yields
// nothing, as does a root from a different backend.
func Eval(selector string, root scrape.Element) iter.Seq[scrape.Element] {
	el, ok := root.(Element)
	m, err := cascadia.Compile(selector)
	return func(yield func(scrape.Element) bool) {
		if !ok || err != nil {
			return
		}
		sel := goquery.NewDocumentFromNode(el.n).FindMatcher(m)
		for _, n := range sel.Nodes {
			if !yield(Element{n: n}) {
				return
			}
		}
	}
}
