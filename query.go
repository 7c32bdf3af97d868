package scrape

import "iter"

// EvalFunc evaluates a CSS selector against the current state of a root
// element and yields the matches in document order. Backends supply one per
// element; the returned sequence must be restartable. Selector compile
// errors surface as an empty sequence, never as a failure.
type EvalFunc func(selector string, root Element) iter.Seq[Element]

// ElementQuery is a lazy, restartable sequence of elements matching a CSS
// selector, scoped to the descendants of a root element.
//
// The query holds no results. Every full iteration re-invokes the backend's
// evaluator against the current state of the root, so results reflect live
// mutation on the live backend and are stable on the static backend. None
// of the accessors materialize more matches than they need, which matters
// for large documents where only the first few matches are consumed.
type ElementQuery struct {
	selector string
	root     Element
	eval     EvalFunc
}

// NewElementQuery returns a query for selector scoped to root, evaluated by
// eval. Backends call this from Element.Select; it is exported so custom
// element implementations (including mocks) can participate.
func NewElementQuery(selector string, root Element, eval EvalFunc) *ElementQuery {
	return &ElementQuery{selector: selector, root: root, eval: eval}
}

// Selector returns the query's CSS selector.
func (q *ElementQuery) Selector() string { return q.selector }

// All returns the match sequence. Ranging over it re-runs the selector; the
// caller may stop early, and may range again to re-evaluate.
func (q *ElementQuery) All() iter.Seq[Element] {
	return q.eval(q.selector, q.root)
}

// First returns the first match, if any. At most one element is produced.
func (q *ElementQuery) First() (Element, bool) {
	for e := range q.All() {
		return e, true
	}
	return nil, false
}

// At returns the i-th match in document order, if it exists. At most i+1
// elements are produced.
func (q *ElementQuery) At(i int) (Element, bool) {
	if i < 0 {
		return nil, false
	}
	n := 0
	for e := range q.All() {
		if n == i {
			return e, true
		}
		n++
	}
	return nil, false
}

// Count returns the number of matches. The elements themselves are not
// retained.
func (q *ElementQuery) Count() int {
	n := 0
	for range q.All() {
		n++
	}
	return n
}

// IsEmpty reports whether the query has no matches. At most one element is
// produced.
func (q *ElementQuery) IsEmpty() bool {
	_, ok := q.First()
	return !ok
}

// Elements materializes all matches into a slice, for callers that need a
// concrete collection.
func (q *ElementQuery) Elements() []Element {
	var out []Element
	for e := range q.All() {
		out = append(out, e)
	}
	return out
}
