// Package mock provides function-field mock implementations of the scrape
// domain interfaces for use in tests.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/scrape"
)

var _ scrape.Browser = (*Browser)(nil)

// Browser is a mock implementation of scrape.Browser.
type Browser struct {
	GetFn          func(ctx context.Context, url string) (scrape.Document, error)
	PostFn         func(ctx context.Context, url string, form map[string]string) (scrape.Document, error)
	ParseFileFn    func(ctx context.Context, path, charset string) (scrape.Document, error)
	ParseStringFn  func(ctx context.Context, html string) (scrape.Document, error)
	ParseReaderFn  func(ctx context.Context, r io.ReadCloser, charset string) (scrape.Document, error)
	CookiesFn      func(ctx context.Context, url string) (map[string]string, error)
	ClearCookiesFn func(ctx context.Context) error
	CloseFn        func() error
}

func (b *Browser) Get(ctx context.Context, url string) (scrape.Document, error) {
	return b.GetFn(ctx, url)
}

func (b *Browser) Post(ctx context.Context, url string, form map[string]string) (scrape.Document, error) {
	return b.PostFn(ctx, url, form)
}

func (b *Browser) ParseFile(ctx context.Context, path, charset string) (scrape.Document, error) {
	return b.ParseFileFn(ctx, path, charset)
}

func (b *Browser) ParseString(ctx context.Context, html string) (scrape.Document, error) {
	return b.ParseStringFn(ctx, html)
}

func (b *Browser) ParseReader(ctx context.Context, r io.ReadCloser, charset string) (scrape.Document, error) {
	return b.ParseReaderFn(ctx, r, charset)
}

func (b *Browser) Cookies(ctx context.Context, url string) (map[string]string, error) {
	return b.CookiesFn(ctx, url)
}

func (b *Browser) ClearCookies(ctx context.Context) error {
	return b.ClearCookiesFn(ctx)
}

func (b *Browser) Close() error {
	return b.CloseFn()
}
