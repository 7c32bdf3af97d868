// Package rod provides the live implementation of scrape.Browser backed
// by a real Chrome browser. Each request opens a fresh window; the
// returned documents are views over that window's live DOM, so their
// contents can change as scripts run. Cookie truth lives in the browser
// engine, not in this package.
package rod

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/scrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html/charset"
)

// Ensure Browser implements scrape.Browser at compile time.
var _ scrape.Browser = (*Browser)(nil)

// Browser fetches and parses documents by driving a headless Chrome
// instance. It is safe for concurrent use; window creation against the
// shared engine is serialized, while operations on distinct windows
// proceed independently.
type Browser struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	userAgent string
	timeout   time.Duration
	proxy     string
	pageFunc  func(*rod.Page) error

	// windowMu guards window creation. The underlying devtools client
	// is not safely reentrant for opening targets.
	windowMu sync.Mutex
	closed   atomic.Bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithUserAgent sets the user agent applied to every new window.
// Defaults to scrape.DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithTimeout bounds navigation and script execution per request.
// Defaults to scrape.DefaultTimeout (15s).
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithProxy routes browser traffic through the given proxy.
func WithProxy(proxyURL string) Option {
	return func(b *Browser) {
		b.proxy = proxyURL
	}
}

// WithPageFunc registers a hook that runs on every newly created window
// before it is used, allowing callers to customize the page (extra
// headers, viewport, request hijacking).
func WithPageFunc(fn func(*rod.Page) error) Option {
	return func(b *Browser) {
		b.pageFunc = fn
	}
}

// NewBrowser launches a headless Chrome instance and connects to it.
// Close must be called when the Browser is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewBrowser(opts ...Option) (*Browser, error) {
	b := &Browser{
		userAgent: scrape.DefaultUserAgent,
		timeout:   scrape.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if b.proxy != "" {
		lnchr = lnchr.Proxy(b.proxy)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return nil, scrape.Errorf(scrape.EINTERNAL, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill() // Clean up launched process on connection failure
		return nil, scrape.Errorf(scrape.EINTERNAL, "connecting to browser: %v", err)
	}

	b.browser = browser
	b.launcher = lnchr
	return b, nil
}

// Get opens a new window, navigates it to the URL, waits for the load
// event, and returns the window as a live document. The engine itself
// executes scripts, follows redirects, and applies cookies.
func (b *Browser) Get(ctx context.Context, rawURL string) (scrape.Document, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	page, err := b.newWindow(ctx)
	if err != nil {
		return nil, err
	}

	p := page.Context(ctx).Timeout(b.timeout)
	if err := p.Navigate(rawURL); err != nil {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.ETRANSPORT, "navigate %s: %v", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.ETRANSPORT, "wait for load of %s: %v", rawURL, err)
	}

	return newDocument(page), nil
}

// Post opens a new window and submits an URL-encoded form to the URL by
// injecting a hidden form into a blank page and submitting it, then
// waits for the resulting navigation to load.
func (b *Browser) Post(ctx context.Context, rawURL string, form map[string]string) (scrape.Document, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	if form == nil {
		form = map[string]string{}
	}

	page, err := b.newWindow(ctx)
	if err != nil {
		return nil, err
	}

	p := page.Context(ctx).Timeout(b.timeout)

	// Arm the navigation waiter before triggering the submit so the
	// load event cannot be missed.
	wait := p.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if _, err := p.Eval(submitFormJS, rawURL, form); err != nil {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.ETRANSPORT, "submit form to %s: %v", rawURL, err)
	}
	wait()

	info, err := p.Info()
	if err != nil || info.URL == "about:blank" {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.ETRANSPORT, "form submission to %s did not complete", rawURL)
	}

	return newDocument(page), nil
}

const submitFormJS = `(url, fields) => {
	const form = document.createElement('form');
	form.method = 'POST';
	form.action = url;
	for (const [name, value] of Object.entries(fields)) {
		const input = document.createElement('input');
		input.type = 'hidden';
		input.name = name;
		input.value = value;
		form.appendChild(input);
	}
	document.body.appendChild(form);
	form.submit();
}`

// ParseFile loads a local HTML file into a new window. An empty
// charsetName means autodetect.
func (b *Browser) ParseFile(ctx context.Context, path, charsetName string) (scrape.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scrape.Errorf(scrape.ENOTFOUND, "open %s: %v", path, err)
	}
	return b.ParseReader(ctx, f, charsetName)
}

// ParseString loads an in-memory HTML fragment into a new window. The
// window stays at about:blank; scripts in the markup run as usual.
func (b *Browser) ParseString(ctx context.Context, html string) (scrape.Document, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	page, err := b.newWindow(ctx)
	if err != nil {
		return nil, err
	}

	p := page.Context(ctx).Timeout(b.timeout)
	if err := p.SetDocumentContent(html); err != nil {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.EPARSE, "set document content: %v", err)
	}

	return newDocument(page), nil
}

// ParseReader loads HTML from r into a new window. The reader is always
// drained and closed, even on error. An empty charsetName means
// autodetect.
func (b *Browser) ParseReader(ctx context.Context, r io.ReadCloser, charsetName string) (scrape.Document, error) {
	html, err := decodeAll(r, charsetName)
	if err != nil {
		return nil, err
	}
	return b.ParseString(ctx, html)
}

// Cookies returns the engine's cookies that apply to the given URL as a
// flat name→value map.
func (b *Browser) Cookies(_ context.Context, rawURL string) (map[string]string, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	all, err := b.browser.GetCookies()
	if err != nil {
		return nil, scrape.Errorf(scrape.EINTERNAL, "get cookies: %v", err)
	}

	cookies := make(map[string]string)
	for _, c := range all {
		if cookieApplies(c, u) {
			cookies[c.Name] = c.Value
		}
	}
	return cookies, nil
}

// ClearCookies removes all cookies from the engine's store.
func (b *Browser) ClearCookies(_ context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.browser.SetCookies(nil); err != nil {
		return scrape.Errorf(scrape.EINTERNAL, "clear cookies: %v", err)
	}
	return nil
}

// CloseWindows closes all open windows without shutting the engine
// down. Documents previously returned become unusable.
func (b *Browser) CloseWindows() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	pages, err := b.browser.Pages()
	if err != nil {
		return scrape.Errorf(scrape.EINTERNAL, "list windows: %v", err)
	}
	for _, p := range pages {
		_ = p.Close()
	}
	return nil
}

// Close shuts down the browser engine and its launcher process. Close
// is safe to call multiple times; operations after Close return
// EINVALID.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := b.browser.Close()
	if b.launcher != nil {
		b.launcher.Kill()
	}
	if err != nil {
		return scrape.Errorf(scrape.EINTERNAL, "close browser: %v", err)
	}
	return nil
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

// newWindow creates a blank window with the browser's defaults applied.
// Creation is serialized across all callers on this Browser.
func (b *Browser) newWindow(ctx context.Context) (*rod.Page, error) {
	b.windowMu.Lock()
	defer b.windowMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, scrape.Errorf(scrape.ETRANSPORT, "open window: %v", err)
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, scrape.Errorf(scrape.EINTERNAL, "open window: %v", err)
	}

	override := proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}
	if err := override.Call(page); err != nil {
		_ = page.Close()
		return nil, scrape.Errorf(scrape.EINTERNAL, "set user agent: %v", err)
	}

	if b.pageFunc != nil {
		if err := b.pageFunc(page); err != nil {
			_ = page.Close()
			return nil, err
		}
	}

	return page, nil
}

func (b *Browser) checkOpen() error {
	if b.closed.Load() {
		return scrape.Errorf(scrape.EINVALID, "browser is closed")
	}
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return scrape.Errorf(scrape.EINVALID, "invalid URL %q: unsupported scheme", rawURL)
	}
	return nil
}

// cookieApplies reports whether a cookie's domain and path cover the URL.
func cookieApplies(c *proto.NetworkCookie, u *url.URL) bool {
	domain := strings.TrimPrefix(c.Domain, ".")
	host := u.Hostname()
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	cookiePath := c.Path
	if cookiePath == "" {
		cookiePath = "/"
	}
	return strings.HasPrefix(path, cookiePath)
}

// decodeAll drains and closes r, decoding it to UTF-8. An empty
// charsetName means autodetect from the content itself.
func decodeAll(r io.ReadCloser, charsetName string) (string, error) {
	defer func() {
		_, _ = io.Copy(io.Discard, r)
		_ = r.Close()
	}()

	var reader io.Reader
	var err error
	if charsetName == "" {
		reader, err = charset.NewReader(r, "")
		if err != nil {
			return "", scrape.Errorf(scrape.EPARSE, "charset detection: %v", err)
		}
	} else {
		reader, err = charset.NewReaderLabel(charsetName, r)
		if err != nil {
			return "", scrape.Errorf(scrape.EINVALID, "unsupported charset %q", charsetName)
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", scrape.Errorf(scrape.EPARSE, "read content: %v", err)
	}
	return string(data), nil
}
