package crawl_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/crawl"
	"github.com/fwojciec/scrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverer(t *testing.T) {
	t.Parallel()

	t.Run("implements scrape.URLSource interface", func(t *testing.T) {
		t.Parallel()
		var _ scrape.URLSource = (*crawl.Discoverer)(nil)
	})

	t.Run("returns sitemap URLs when the sitemap has entries", func(t *testing.T) {
		t.Parallel()

		sitemapURLs := []string{
			"https://example.com/docs/intro",
			"https://example.com/docs/api",
		}

		var fetches int
		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
					return sitemapURLs, nil
				},
			},
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					fetches++
					return mustParse("<html></html>", url), nil
				},
			},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, sitemapURLs, urls)
		assert.Zero(t, fetches, "sitemap results should skip recursive discovery")
	})

	t.Run("forwards the source URL and filter to the sitemap service", func(t *testing.T) {
		t.Parallel()

		filter := &scrape.URLFilter{
			Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
		}

		var gotURL string
		var gotFilter *scrape.URLFilter
		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, baseURL string, f *scrape.URLFilter) ([]string, error) {
					gotURL = baseURL
					gotFilter = f
					return []string{"https://example.com/docs/a"}, nil
				},
			},
			Filter: filter,
		}

		_, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs/", gotURL)
		assert.Same(t, filter, gotFilter)
	})

	t.Run("falls back to crawling when the sitemap is empty", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
					return nil, nil
				},
			},
			Browser: siteBrowser(map[string]string{
				"https://example.com/docs/": `<html><body><nav>
					<a href="/docs/guide">Guide</a>
				</nav></body></html>`,
				"https://example.com/docs/guide": `<html><body>guide</body></html>`,
			}),
			RetryDelays: []time.Duration{0},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/docs/",
			"https://example.com/docs/guide",
		}, urls)
	})

	t.Run("falls back to crawling when sitemap discovery fails", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
					return nil, scrape.Errorf(scrape.ETRANSPORT, "connection refused")
				},
			},
			Browser: siteBrowser(map[string]string{
				"https://example.com/docs/": `<html><body>home</body></html>`,
			}),
			RetryDelays: []time.Duration{0},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs/"}, urls)
	})

	t.Run("skips sitemap discovery when no sitemap service is configured", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Browser: siteBrowser(map[string]string{
				"https://example.com/docs/": `<html><body>home</body></html>`,
			}),
			RetryDelays: []time.Duration{0},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs/"}, urls)
	})

	t.Run("returns the sitemap error when no browser is configured", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
					return nil, scrape.Errorf(scrape.ETRANSPORT, "connection refused")
				},
			},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		assert.Nil(t, urls)
		assert.Equal(t, scrape.ETRANSPORT, scrape.ErrorCode(err))
	})

	t.Run("returns nothing when nothing is configured", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("applies the URL filter during recursive discovery", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, _ string, _ *scrape.URLFilter) ([]string, error) {
					return nil, nil
				},
			},
			Browser: siteBrowser(map[string]string{
				"https://example.com/docs/": `<html><body>
					<a href="/docs/keep">Keep</a>
					<a href="/docs/internal/secret">Skip</a>
				</body></html>`,
				"https://example.com/docs/keep":            `<html><body>keep</body></html>`,
				"https://example.com/docs/internal/secret": `<html><body>secret</body></html>`,
			}),
			Filter: &scrape.URLFilter{
				Exclude: []*regexp.Regexp{regexp.MustCompile(`/internal/`)},
			},
			RetryDelays: []time.Duration{0},
		}

		urls, err := d.Discover(context.Background(), "https://example.com/docs/")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://example.com/docs/keep")
		assert.NotContains(t, urls, "https://example.com/docs/internal/secret")
	})
}
