package mock

import (
	"context"

	"github.com/fwojciec/scrape"
)

// Compile-time interface verification.
var (
	_ scrape.URLSource   = (*URLSource)(nil)
	_ scrape.PageFetcher = (*PageFetcher)(nil)
	_ scrape.PageStore   = (*PageStore)(nil)
)

// URLSource is a mock implementation of scrape.URLSource.
type URLSource struct {
	DiscoverFn func(ctx context.Context, sourceURL string) ([]string, error)
}

func (s *URLSource) Discover(ctx context.Context, sourceURL string) ([]string, error) {
	return s.DiscoverFn(ctx, sourceURL)
}

// PageFetcher is a mock implementation of scrape.PageFetcher.
type PageFetcher struct {
	FetchAllFn func(ctx context.Context, urls []string, progress scrape.FetchProgressFunc) ([]*scrape.Page, error)
}

func (f *PageFetcher) FetchAll(ctx context.Context, urls []string, progress scrape.FetchProgressFunc) ([]*scrape.Page, error) {
	return f.FetchAllFn(ctx, urls, progress)
}

// PageStore is a mock implementation of scrape.PageStore.
type PageStore struct {
	SavePageFn        func(ctx context.Context, page *scrape.Page) error
	FindPageByURLFn   func(ctx context.Context, url string) (*scrape.Page, error)
	FindPagesFn       func(ctx context.Context, filter scrape.PageFilter) ([]*scrape.Page, error)
	DeletePageByURLFn func(ctx context.Context, url string) error
}

func (s *PageStore) SavePage(ctx context.Context, page *scrape.Page) error {
	return s.SavePageFn(ctx, page)
}

func (s *PageStore) FindPageByURL(ctx context.Context, url string) (*scrape.Page, error) {
	return s.FindPageByURLFn(ctx, url)
}

func (s *PageStore) FindPages(ctx context.Context, filter scrape.PageFilter) ([]*scrape.Page, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageStore) DeletePageByURL(ctx context.Context, url string) error {
	return s.DeletePageByURLFn(ctx, url)
}
