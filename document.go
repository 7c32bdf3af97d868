package scrape

// Document represents one retrieved or parsed HTML document.
//
// Static-backend documents are value objects over an immutable tree. Live
// backend documents are views: the underlying tree is re-resolved on every
// access, so two observations separated by a client-side navigation can see
// different content, locations, and roots.
type Document interface {
	// Location returns the document's current URL. Parsed documents
	// (ParseString and friends) report "" unless the backend knows better.
	Location() string

	// Root returns the top element, conventionally <html>.
	Root() Element

	// Title returns the document title, or "" when the backend provides no
	// such convention.
	Title() string

	// Head returns the head element, or nil when absent.
	Head() Element

	// Body returns the body element, or nil when absent.
	Body() Element

	// HTML returns the serialized whole-document markup.
	HTML() string
}
