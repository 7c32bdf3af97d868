package crawl_test

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/crawl"
	"github.com/fwojciec/scrape/goquery"
	"github.com/fwojciec/scrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParse builds a static document for browser mocks. It panics on
// parse failure so it can run inside worker goroutines.
func mustParse(html, location string) scrape.Document {
	doc, err := goquery.Parse(strings.NewReader(html), location)
	if err != nil {
		panic(err)
	}
	return doc
}

func TestCrawler_ImplementsPageFetcher(t *testing.T) {
	t.Parallel()
	var _ scrape.PageFetcher = (*crawl.Crawler)(nil)
}

func TestCrawler_FetchAll(t *testing.T) {
	t.Parallel()

	t.Run("returns pages in input order", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					html := `<html><head><title>` + url + `</title></head><body>content</body></html>`
					return mustParse(html, url), nil
				},
			},
			Concurrency: 4,
			RetryDelays: []time.Duration{0},
		}

		urls := []string{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
		}

		pages, err := c.FetchAll(context.Background(), urls, nil)

		require.NoError(t, err)
		require.Len(t, pages, 3)
		for i, page := range pages {
			assert.Equal(t, urls[i], page.URL)
			assert.Equal(t, urls[i], page.Location)
			assert.Equal(t, urls[i], page.Title)
			assert.Equal(t, i, page.Position)
			assert.NotEmpty(t, page.HTML)
			assert.NotEmpty(t, page.ContentHash)
			assert.False(t, page.FetchedAt.IsZero())
		}
	})

	t.Run("drops failed URLs and reports them via progress", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					if url == "https://example.com/bad" {
						return nil, scrape.Errorf(scrape.ETRANSPORT, "HTTP 500 for %s", url)
					}
					return mustParse("<html><body>ok</body></html>", url), nil
				},
			},
			Concurrency: 1,
			RetryDelays: []time.Duration{0},
		}

		urls := []string{
			"https://example.com/a",
			"https://example.com/bad",
			"https://example.com/b",
		}

		var events []scrape.FetchProgress
		pages, err := c.FetchAll(context.Background(), urls, func(p scrape.FetchProgress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "https://example.com/a", pages[0].URL)
		assert.Equal(t, "https://example.com/b", pages[1].URL)

		// Positions are compacted after dropping the failure.
		assert.Equal(t, 0, pages[0].Position)
		assert.Equal(t, 1, pages[1].Position)

		require.Len(t, events, 3)
		var failed []scrape.FetchProgress
		for _, e := range events {
			assert.Equal(t, 3, e.Total)
			if e.Error != nil {
				failed = append(failed, e)
			}
		}
		require.Len(t, failed, 1)
		assert.Equal(t, "https://example.com/bad", failed[0].URL)
		assert.Equal(t, scrape.ETRANSPORT, scrape.ErrorCode(failed[0].Error))
	})

	t.Run("retries transport errors until delays are exhausted", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int64
		c := &crawl.Crawler{
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					attempts.Add(1)
					return nil, scrape.Errorf(scrape.ETRANSPORT, "HTTP 503 for %s", url)
				},
			},
			RetryDelays: []time.Duration{0, 0},
		}

		pages, err := c.FetchAll(context.Background(), []string{"https://example.com/x"}, nil)

		require.NoError(t, err)
		assert.Empty(t, pages)
		assert.Equal(t, int64(3), attempts.Load())
	})

	t.Run("does not retry invalid URLs", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int64
		c := &crawl.Crawler{
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					attempts.Add(1)
					return nil, scrape.Errorf(scrape.EINVALID, "invalid URL %q", url)
				},
			},
			RetryDelays: []time.Duration{0, 0},
		}

		pages, err := c.FetchAll(context.Background(), []string{"https://example.com/x"}, nil)

		require.NoError(t, err)
		assert.Empty(t, pages)
		assert.Equal(t, int64(1), attempts.Load())
	})

	t.Run("waits on the rate limiter per host", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var domains []string
		c := &crawl.Crawler{
			Browser: &mock.Browser{
				GetFn: func(_ context.Context, url string) (scrape.Document, error) {
					return mustParse("<html><body>ok</body></html>", url), nil
				},
			},
			Limiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					mu.Lock()
					domains = append(domains, domain)
					mu.Unlock()
					return nil
				},
			},
			Concurrency: 2,
			RetryDelays: []time.Duration{0},
		}

		_, err := c.FetchAll(context.Background(), []string{
			"https://one.example/a",
			"https://two.example/b",
		}, nil)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"one.example", "two.example"}, domains)
	})

	t.Run("returns nil for no URLs", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{Browser: &mock.Browser{}}
		pages, err := c.FetchAll(context.Background(), nil, nil)

		require.NoError(t, err)
		assert.Nil(t, pages)
	})
}

// siteBrowser wires a mock browser over a static map of pages.
func siteBrowser(pages map[string]string) *mock.Browser {
	return &mock.Browser{
		GetFn: func(_ context.Context, url string) (scrape.Document, error) {
			html, ok := pages[url]
			if !ok {
				return nil, scrape.Errorf(scrape.ETRANSPORT, "HTTP 404 for %s", url)
			}
			return mustParse(html, url), nil
		},
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("follows links within the source host and path prefix", func(t *testing.T) {
		t.Parallel()

		browser := siteBrowser(map[string]string{
			"https://example.com/docs/": `<html><body>
				<nav><a href="/docs/a">A</a></nav>
				<p><a href="b">B</a></p>
				<p><a href="/blog/post">off prefix</a></p>
				<p><a href="https://other.example/docs/">off host</a></p>
				<p><a href="#section">fragment</a></p>
				<p><a href="mailto:x@example.com">mail</a></p>
			</body></html>`,
			"https://example.com/docs/a": `<html><body>terminal</body></html>`,
			"https://example.com/docs/b": `<html><body><a href="/docs/a">dup</a></body></html>`,
		})

		c := &crawl.Crawler{
			Browser:     browser,
			RetryDelays: []time.Duration{0},
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", nil)

		require.NoError(t, err)
		require.Len(t, pages, 3)

		var urls []string
		for i, page := range pages {
			urls = append(urls, page.URL)
			assert.Equal(t, i, page.Position)
		}
		assert.Equal(t, "https://example.com/docs/", urls[0])
		assert.ElementsMatch(t, []string{"https://example.com/docs/a", "https://example.com/docs/b"}, urls[1:])
	})

	t.Run("visits navigation links before content links", func(t *testing.T) {
		t.Parallel()

		browser := siteBrowser(map[string]string{
			"https://example.com/docs/": `<html><body>
				<p><a href="/docs/content">content link</a></p>
				<nav><a href="/docs/nav">nav link</a></nav>
			</body></html>`,
			"https://example.com/docs/nav":     `<html><body>nav page</body></html>`,
			"https://example.com/docs/content": `<html><body>content page</body></html>`,
		})

		c := &crawl.Crawler{
			Browser:     browser,
			RetryDelays: []time.Duration{0},
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", nil)

		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, "https://example.com/docs/nav", pages[1].URL)
		assert.Equal(t, "https://example.com/docs/content", pages[2].URL)
	})

	t.Run("stops at MaxPages", func(t *testing.T) {
		t.Parallel()

		browser := siteBrowser(map[string]string{
			"https://example.com/docs/":  `<html><body><a href="/docs/a">A</a><a href="/docs/b">B</a></body></html>`,
			"https://example.com/docs/a": `<html><body>a</body></html>`,
			"https://example.com/docs/b": `<html><body>b</body></html>`,
		})

		c := &crawl.Crawler{
			Browser:     browser,
			MaxPages:    2,
			RetryDelays: []time.Duration{0},
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", nil)

		require.NoError(t, err)
		assert.Len(t, pages, 2)
	})

	t.Run("reports fetch failures and keeps crawling", func(t *testing.T) {
		t.Parallel()

		browser := siteBrowser(map[string]string{
			"https://example.com/docs/":  `<html><body><a href="/docs/missing">M</a><a href="/docs/b">B</a></body></html>`,
			"https://example.com/docs/b": `<html><body>b</body></html>`,
		})

		c := &crawl.Crawler{
			Browser:     browser,
			RetryDelays: []time.Duration{0},
		}

		var failures []scrape.FetchProgress
		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", func(p scrape.FetchProgress) {
			if p.Error != nil {
				failures = append(failures, p)
			}
		})

		require.NoError(t, err)
		require.Len(t, pages, 2)
		require.Len(t, failures, 1)
		assert.Equal(t, "https://example.com/docs/missing", failures[0].URL)
	})

	t.Run("applies the URL filter to discovered links", func(t *testing.T) {
		t.Parallel()

		site := map[string]string{
			"https://example.com/docs/":     `<html><body><a href="/docs/keep">K</a><a href="/docs/skip">S</a></body></html>`,
			"https://example.com/docs/keep": `<html><body>kept</body></html>`,
			"https://example.com/docs/skip": `<html><body>skipped</body></html>`,
		}
		var fetched []string
		browser := &mock.Browser{
			GetFn: func(_ context.Context, url string) (scrape.Document, error) {
				fetched = append(fetched, url)
				return mustParse(site[url], url), nil
			},
		}

		c := &crawl.Crawler{
			Browser: browser,
			Filter: &scrape.URLFilter{
				Exclude: []*regexp.Regexp{regexp.MustCompile(`/docs/skip$`)},
			},
			RetryDelays: []time.Duration{0},
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", nil)

		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "https://example.com/docs/keep", pages[1].URL)
		assert.NotContains(t, fetched, "https://example.com/docs/skip")
	})

	t.Run("returns EINVALID for an invalid source URL", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{Browser: &mock.Browser{}}
		_, err := c.Crawl(context.Background(), "://bad", nil)

		require.Error(t, err)
		assert.Equal(t, scrape.EINVALID, scrape.ErrorCode(err))
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var fetches atomic.Int64
		browser := &mock.Browser{
			GetFn: func(_ context.Context, url string) (scrape.Document, error) {
				fetches.Add(1)
				cancel()
				return mustParse(`<html><body><a href="/docs/next">next</a></body></html>`, url), nil
			},
		}

		c := &crawl.Crawler{
			Browser:     browser,
			RetryDelays: []time.Duration{0},
		}

		pages, err := c.Crawl(ctx, "https://example.com/docs/", nil)

		require.NoError(t, err)
		assert.Len(t, pages, 1)
		assert.Equal(t, int64(1), fetches.Load())
	})
}

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com/very/long/path/to/documentation"
		result := crawl.TruncateURL(url, 20)
		assert.Equal(t, ".../to/documentation", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns URL unchanged when exactly max length", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com"
		assert.Equal(t, url, crawl.TruncateURL(url, len(url)))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	t.Run("formats bytes as B", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "512 B", crawl.FormatBytes(512))
	})

	t.Run("formats kilobytes as KB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "1.5 KB", crawl.FormatBytes(1536))
	})

	t.Run("formats megabytes as MB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "2.0 MB", crawl.FormatBytes(2*1024*1024))
	})
}

func TestComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("returns consistent hash for same content", func(t *testing.T) {
		t.Parallel()
		content := "test content"
		hash1 := crawl.ComputeHash(content)
		hash2 := crawl.ComputeHash(content)
		assert.Equal(t, hash1, hash2)
	})

	t.Run("returns different hashes for different content", func(t *testing.T) {
		t.Parallel()
		hash1 := crawl.ComputeHash("content a")
		hash2 := crawl.ComputeHash("content b")
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("returns hex string", func(t *testing.T) {
		t.Parallel()
		hash := crawl.ComputeHash("test")
		assert.Regexp(t, `^[0-9a-f]+$`, hash)
	})
}
