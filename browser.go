package scrape

import (
	"context"
	"io"
	"time"
)

// Request defaults applied by every Browser implementation.
const (
	// DefaultUserAgent identifies the library in outgoing requests.
	DefaultUserAgent = "scrape/1.0 (+https://github.com/fwojciec/scrape)"

	// DefaultTimeout bounds a single request, navigation included.
	DefaultTimeout = 15 * time.Second

	// DefaultAccept is the Accept header sent with every request.
	DefaultAccept = "text/html,application/xhtml+xml,application/xml"

	// DefaultAcceptCharset is the Accept-Charset header sent with every request.
	DefaultAcceptCharset = "utf-8"
)

// Browser retrieves and parses HTML documents.
//
// Implementations differ in how documents behave after retrieval: the static
// backend (http.Browser) returns immutable snapshots, while the live backend
// (rod.Browser) returns views over a scripting engine's window whose content
// can change out from under a held reference. The query and navigation
// semantics are identical across both.
type Browser interface {
	// Get issues a GET request, applying default headers, cookies, and the
	// configured timeout, and returns the resulting document after following
	// redirects.
	Get(ctx context.Context, url string) (Document, error)

	// Post issues a form-encoded POST request. Redirected responses continue
	// as GET, like Get.
	Post(ctx context.Context, url string, form map[string]string) (Document, error)

	// ParseFile parses a local file with no network request. The charset
	// label selects the input encoding; "" sniffs it from the content.
	ParseFile(ctx context.Context, path, charset string) (Document, error)

	// ParseString parses an in-memory HTML string with no network request.
	ParseString(ctx context.Context, html string) (Document, error)

	// ParseReader parses HTML from r with no network request. r is a scoped
	// resource: it is fully consumed and closed on every exit path,
	// including parse failure. The charset label selects the input encoding;
	// "" sniffs it from the content.
	ParseReader(ctx context.Context, r io.ReadCloser, charset string) (Document, error)

	// Cookies returns the cookies currently visible for the URL as a
	// name-to-value map. Where cookie truth lives differs by backend: the
	// static backend keeps a single flat jar per Browser instance and
	// ignores the URL argument; the live backend queries the engine's own
	// cookie store scoped to the URL.
	Cookies(ctx context.Context, url string) (map[string]string, error)

	// ClearCookies resets the backend's cookie state.
	ClearCookies(ctx context.Context) error

	// Close releases backend resources. A closed Browser fails all
	// subsequent operations.
	Close() error
}
