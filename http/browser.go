// Package http provides the static implementation of scrape.Browser.
// It fetches pages over plain HTTP without executing JavaScript and
// parses responses into immutable snapshot documents.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/goquery"
	"golang.org/x/net/html/charset"
)

// Ensure Browser implements scrape.Browser at compile time.
var _ scrape.Browser = (*Browser)(nil)

// Browser fetches and parses documents using plain HTTP requests.
//
// Cookies accumulate in a single flat name→value jar for the lifetime of
// the Browser, with no per-domain or per-path scoping; a cookie set by
// one host is replayed to every host.
//
// Responses carrying a Location header are followed recursively
// regardless of status code. By default there is no depth limit, so a
// redirect loop will recurse until the request context or timeout stops
// it; use WithMaxRedirects to bound the recursion.
type Browser struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	proxy        string
	proxyErr     error
	maxRedirects int
	requestFunc  func(*http.Request)

	mu      sync.Mutex
	cookies map[string]string
}

// Option configures a Browser.
type Option func(*Browser)

// WithUserAgent sets the User-Agent header sent with every request.
// Defaults to scrape.DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithTimeout sets the timeout for each HTTP exchange, including body
// read. Defaults to scrape.DefaultTimeout (15s). Each redirect hop gets
// a fresh timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithProxy routes all requests through the given proxy URL.
func WithProxy(proxyURL string) Option {
	return func(b *Browser) {
		b.proxy = proxyURL
	}
}

// WithMaxRedirects bounds the redirect-follow recursion. n <= 0 means
// unlimited, which is the default. Exceeding the bound returns
// ETRANSPORT.
func WithMaxRedirects(n int) Option {
	return func(b *Browser) {
		b.maxRedirects = n
	}
}

// WithRequestFunc registers a hook that runs on every outgoing request
// after default headers and cookies are applied, allowing callers to
// add or override headers.
func WithRequestFunc(fn func(*http.Request)) Option {
	return func(b *Browser) {
		b.requestFunc = fn
	}
}

// NewBrowser creates a static Browser.
func NewBrowser(opts ...Option) *Browser {
	b := &Browser{
		userAgent: scrape.DefaultUserAgent,
		timeout:   scrape.DefaultTimeout,
		cookies:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}

	transport := http.DefaultTransport
	if b.proxy != "" {
		proxyURL, err := url.Parse(b.proxy)
		if err != nil {
			b.proxyErr = scrape.Errorf(scrape.EINVALID, "invalid proxy URL %q: %v", b.proxy, err)
		} else if t, ok := http.DefaultTransport.(*http.Transport); ok {
			tc := t.Clone()
			tc.Proxy = http.ProxyURL(proxyURL)
			transport = tc
		}
	}

	b.client = &http.Client{
		Timeout:   b.timeout,
		Transport: transport,
		// Redirects are handled by the request pipeline itself so that
		// cookies merge on every hop and Location is honored on any
		// status code.
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return b
}

// Get fetches the URL and returns the parsed document, following
// redirects as described on Browser.
func (b *Browser) Get(ctx context.Context, rawURL string) (scrape.Document, error) {
	return b.do(ctx, http.MethodGet, rawURL, nil, 0)
}

// Post submits the form URL-encoded and returns the parsed document.
// Redirected responses are re-requested with GET.
func (b *Browser) Post(ctx context.Context, rawURL string, form map[string]string) (scrape.Document, error) {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	return b.do(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()), 0)
}

// do runs one hop of the request pipeline: validate the URL, apply
// default settings, execute, merge response cookies, then either follow
// a Location header or parse the body.
func (b *Browser) do(ctx context.Context, method, rawURL string, body io.Reader, redirects int) (scrape.Document, error) {
	if b.proxyErr != nil {
		return nil, b.proxyErr
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, scrape.Errorf(scrape.EINVALID, "invalid URL %q: unsupported scheme", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, scrape.Errorf(scrape.EINVALID, "invalid request for %q: %v", rawURL, err)
	}

	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", scrape.DefaultAccept)
	req.Header.Set("Accept-Charset", scrape.DefaultAcceptCharset)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookieList() {
		req.AddCookie(c)
	}
	if b.requestFunc != nil {
		b.requestFunc(req)
	}

	res, err := b.client.Do(req)
	if err != nil {
		return nil, scrape.Errorf(scrape.ETRANSPORT, "fetch %s: %v", rawURL, err)
	}

	b.mergeCookies(res.Cookies())

	if loc := res.Header.Get("Location"); loc != "" {
		drainBody(res.Body)
		if b.maxRedirects > 0 && redirects >= b.maxRedirects {
			return nil, scrape.Errorf(scrape.ETRANSPORT, "stopped after %d redirects fetching %s", b.maxRedirects, rawURL)
		}
		next, err := res.Request.URL.Parse(loc)
		if err != nil {
			return nil, scrape.Errorf(scrape.EINVALID, "invalid redirect location %q: %v", loc, err)
		}
		return b.do(ctx, http.MethodGet, next.String(), nil, redirects+1)
	}

	defer drainBody(res.Body)

	if res.StatusCode >= 400 {
		return nil, scrape.Errorf(scrape.ETRANSPORT, "HTTP %d for %s", res.StatusCode, rawURL)
	}

	reader, err := charset.NewReader(res.Body, res.Header.Get("Content-Type"))
	if err != nil {
		return nil, scrape.Errorf(scrape.EPARSE, "charset detection for %s: %v", rawURL, err)
	}

	doc, err := goquery.Parse(reader, res.Request.URL.String())
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseFile parses a local HTML file. The document's location is the
// file path. An empty charsetName means autodetect.
func (b *Browser) ParseFile(_ context.Context, path, charsetName string) (scrape.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scrape.Errorf(scrape.ENOTFOUND, "open %s: %v", path, err)
	}
	return b.parse(f, charsetName, path)
}

// ParseString parses an in-memory HTML fragment. The document's
// location is empty.
func (b *Browser) ParseString(_ context.Context, html string) (scrape.Document, error) {
	return b.parse(io.NopCloser(strings.NewReader(html)), "", "")
}

// ParseReader parses HTML from r. The reader is always drained and
// closed, even on error. An empty charsetName means autodetect.
func (b *Browser) ParseReader(_ context.Context, r io.ReadCloser, charsetName string) (scrape.Document, error) {
	return b.parse(r, charsetName, "")
}

func (b *Browser) parse(r io.ReadCloser, charsetName, location string) (scrape.Document, error) {
	defer drainBody(r)

	var reader io.Reader
	var err error
	if charsetName == "" {
		reader, err = charset.NewReader(r, "")
		if err != nil {
			return nil, scrape.Errorf(scrape.EPARSE, "charset detection: %v", err)
		}
	} else {
		reader, err = charset.NewReaderLabel(charsetName, r)
		if err != nil {
			return nil, scrape.Errorf(scrape.EINVALID, "unsupported charset %q", charsetName)
		}
	}

	doc, err := goquery.Parse(reader, location)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Cookies returns a copy of the jar. The url argument is ignored: the
// flat jar has no per-domain scoping.
func (b *Browser) Cookies(_ context.Context, _ string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cookies := make(map[string]string, len(b.cookies))
	for k, v := range b.cookies {
		cookies[k] = v
	}
	return cookies, nil
}

// ClearCookies empties the jar.
func (b *Browser) ClearCookies(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookies = make(map[string]string)
	return nil
}

// Close releases resources. The static Browser holds none beyond idle
// connections, which are cleaned up by the transport.
func (b *Browser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// cookieList snapshots the jar as cookies sorted by name, so replay
// order is deterministic.
func (b *Browser) cookieList() []*http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.cookies))
	for name := range b.cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, &http.Cookie{Name: name, Value: b.cookies[name]})
	}
	return cookies
}

// mergeCookies folds Set-Cookie values into the jar, keyed by name,
// last write wins.
func (b *Browser) mergeCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range cookies {
		b.cookies[c.Name] = c.Value
	}
}

func drainBody(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}
