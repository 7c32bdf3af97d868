// Package slog provides logging decorators for the library's service
// interfaces, built on the standard library's structured logger.
package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/scrape"
)

// Ensure LoggingBrowser implements scrape.Browser.
var _ scrape.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser wraps a Browser with debug logging.
type LoggingBrowser struct {
	next   scrape.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next scrape.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// Get logs the URL being fetched and delegates to the wrapped browser.
func (b *LoggingBrowser) Get(ctx context.Context, url string) (doc scrape.Document, err error) {
	defer func(begin time.Time) {
		b.logger.Info("get",
			"url", url,
			"location", location(doc),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Get(ctx, url)
}

// Post logs the form submission and delegates to the wrapped browser.
func (b *LoggingBrowser) Post(ctx context.Context, url string, form map[string]string) (doc scrape.Document, err error) {
	defer func(begin time.Time) {
		b.logger.Info("post",
			"url", url,
			"fields", len(form),
			"location", location(doc),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Post(ctx, url, form)
}

// ParseFile logs the file being parsed and delegates to the wrapped browser.
func (b *LoggingBrowser) ParseFile(ctx context.Context, path, charset string) (doc scrape.Document, err error) {
	defer func(begin time.Time) {
		b.logger.Info("parse file",
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ParseFile(ctx, path, charset)
}

// ParseString logs the parse and delegates to the wrapped browser.
func (b *LoggingBrowser) ParseString(ctx context.Context, html string) (doc scrape.Document, err error) {
	defer func(begin time.Time) {
		b.logger.Info("parse string",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ParseString(ctx, html)
}

// ParseReader logs the parse and delegates to the wrapped browser.
func (b *LoggingBrowser) ParseReader(ctx context.Context, r io.ReadCloser, charset string) (doc scrape.Document, err error) {
	defer func(begin time.Time) {
		b.logger.Info("parse reader",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ParseReader(ctx, r, charset)
}

// Cookies delegates to the wrapped browser.
func (b *LoggingBrowser) Cookies(ctx context.Context, url string) (map[string]string, error) {
	return b.next.Cookies(ctx, url)
}

// ClearCookies logs the reset and delegates to the wrapped browser.
func (b *LoggingBrowser) ClearCookies(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("clear cookies",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ClearCookies(ctx)
}

// Close delegates to the wrapped browser.
func (b *LoggingBrowser) Close() error {
	return b.next.Close()
}

func location(doc scrape.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Location()
}
