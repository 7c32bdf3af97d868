package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/scrape"
	main "github.com/fwojciec/scrape/cmd/scrape"
	"github.com/fwojciec/scrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("list mode prints discovered URLs without fetching", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
				return []string{
					"https://example.com/docs/page1",
					"https://example.com/docs/page2",
				}, nil
			},
		}

		var fetchCalled bool
		fetcher := &mock.PageFetcher{
			FetchAllFn: func(_ context.Context, _ []string, _ scrape.FetchProgressFunc) ([]*scrape.Page, error) {
				fetchCalled = true
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
			Fetcher:  fetcher,
		}

		cmd := &main.SitemapCmd{
			List: true,
			URL:  "https://example.com/docs",
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs/page1\nhttps://example.com/docs/page2\n", stdout.String())
		assert.False(t, fetchCalled, "list mode should not fetch")
	})

	t.Run("passes compiled filters to discovery", func(t *testing.T) {
		t.Parallel()

		var gotFilter *scrape.URLFilter
		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, filter *scrape.URLFilter) ([]string, error) {
				gotFilter = filter
				return nil, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
		}

		cmd := &main.SitemapCmd{
			List:   true,
			Filter: []string{`/docs/`},
			URL:    "https://example.com",
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, gotFilter)
		assert.True(t, gotFilter.Match("https://example.com/docs/intro"))
		assert.False(t, gotFilter.Match("https://example.com/blog/post"))
	})

	t.Run("rejects an invalid filter pattern", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.SitemapCmd{
			Filter: []string{"["},
			URL:    "https://example.com",
		}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, scrape.EINVALID, scrape.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid filter pattern")
	})

	t.Run("fetches discovered pages and prints their URLs", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
				return []string{
					"https://example.com/docs/page1",
					"https://example.com/docs/page2",
				}, nil
			},
		}

		fetcher := &mock.PageFetcher{
			FetchAllFn: func(_ context.Context, urls []string, progress scrape.FetchProgressFunc) ([]*scrape.Page, error) {
				pages := make([]*scrape.Page, len(urls))
				for i, url := range urls {
					pages[i] = &scrape.Page{URL: url, HTML: "<html></html>"}
					if progress != nil {
						progress(scrape.FetchProgress{URL: url, Completed: i + 1, Total: len(urls)})
					}
				}
				return pages, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
			Fetcher:  fetcher,
		}

		cmd := &main.SitemapCmd{URL: "https://example.com/docs"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Found 2 URLs")
		assert.Contains(t, stdout.String(), "https://example.com/docs/page1\n")
		assert.Contains(t, stdout.String(), "https://example.com/docs/page2\n")
		assert.Contains(t, stdout.String(), "Fetched 2 pages")
	})

	t.Run("returns error when discovery fails", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
				return nil, scrape.Errorf(scrape.ETRANSPORT, "connection refused")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Sitemaps: sitemaps,
		}

		cmd := &main.SitemapCmd{URL: "https://example.com"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: connection refused")
	})

	t.Run("returns error when the sitemap is empty", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
				return nil, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
		}

		cmd := &main.SitemapCmd{URL: "https://example.com"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, scrape.ENOTFOUND, scrape.ErrorCode(err))
	})

	t.Run("saves fetched pages through the writer and commits", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
				return []string{"https://example.com/docs/page1"}, nil
			},
		}

		fetcher := &mock.PageFetcher{
			FetchAllFn: func(_ context.Context, urls []string, _ scrape.FetchProgressFunc) ([]*scrape.Page, error) {
				return []*scrape.Page{{URL: urls[0], HTML: "<html></html>"}}, nil
			},
		}

		var saved []*scrape.Page
		var committed bool
		writer := &mock.PageWriter{
			SaveFn: func(_ context.Context, page *scrape.Page) error {
				saved = append(saved, page)
				return nil
			},
			CommitFn: func() error {
				committed = true
				return nil
			},
			AbortFn: func() error { return nil },
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
			Fetcher:  fetcher,
			Writer:   writer,
		}

		cmd := &main.SitemapCmd{URL: "https://example.com/docs"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.True(t, committed, "writer should be committed on success")
		assert.Contains(t, stdout.String(), "Saved 1 pages")
	})
}
