// Package crawl provides crawling orchestration. It coordinates URL
// discovery, concurrent fetching, per-domain rate limiting, and retry,
// and turns retrieved documents into page snapshots.
package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/scrape"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ scrape.PageFetcher = (*Crawler)(nil)

// Frontier configuration for recursive crawling.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
	// maxCrawlPages limits the number of URLs processed to prevent runaway crawls.
	maxCrawlPages = 1000
)

// Crawler fetches pages through a Browser, hiding concurrency, rate
// limiting, and retry from callers.
type Crawler struct {
	Browser scrape.Browser

	// Limiter throttles requests per domain. Nil disables throttling.
	Limiter scrape.DomainLimiter

	// Filter restricts which discovered links Crawl follows. Nil follows
	// everything in scope.
	Filter *scrape.URLFilter

	// Concurrency is the number of parallel fetches in FetchAll.
	// Defaults to 10.
	Concurrency int

	// MaxPages caps how many pages Crawl visits. Defaults to 1000.
	MaxPages int

	// RetryDelays are the backoff delays between fetch attempts.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration
}

// fetchResult holds the outcome of processing a single URL.
type fetchResult struct {
	position int
	url      string
	page     *scrape.Page
	err      error
}

// FetchAll retrieves the given URLs concurrently and returns their page
// snapshots in input order. Failed URLs are dropped from the result and
// reported through progress with the error set.
func (c *Crawler) FetchAll(ctx context.Context, urls []string, progress scrape.FetchProgressFunc) ([]*scrape.Page, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	resultCh := make(chan fetchResult, len(urls))

	var completed atomic.Int64
	total := len(urls)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- c.fetchOne(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in input order.
	results := make([]*scrape.Page, len(urls))
	for result := range resultCh {
		completed.Add(1)

		if result.err != nil {
			if progress != nil {
				progress(scrape.FetchProgress{
					URL:       result.url,
					Completed: int(completed.Load()),
					Total:     total,
					Error:     result.err,
				})
			}
			continue
		}

		results[result.position] = result.page
		if progress != nil {
			progress(scrape.FetchProgress{
				URL:       result.url,
				Completed: int(completed.Load()),
				Total:     total,
			})
		}
	}

	pages := make([]*scrape.Page, 0, len(urls))
	for _, page := range results {
		if page != nil {
			page.Position = len(pages)
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// fetchOne fetches and snapshots a single URL.
func (c *Crawler) fetchOne(ctx context.Context, position int, rawURL string) fetchResult {
	result := fetchResult{
		position: position,
		url:      rawURL,
	}

	if c.Limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			result.err = scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", rawURL, err)
			return result
		}
		if err := c.Limiter.Wait(ctx, u.Host); err != nil {
			result.err = err
			return result
		}
	}

	doc, err := FetchWithRetryDelays(ctx, rawURL, c.Browser.Get, nil, c.delays())
	if err != nil {
		result.err = err
		return result
	}

	result.page = snapshot(rawURL, position, doc)
	return result
}

// Crawl fetches sourceURL and recursively follows discovered links within
// its host and path prefix, in priority order, until the frontier is empty
// or MaxPages is reached. Pages are returned in visit order.
//
// URLs are processed sequentially to keep rate limiting and frontier
// management simple; use FetchAll with a pre-discovered URL list when
// throughput matters.
func (c *Crawler) Crawl(ctx context.Context, sourceURL string, progress scrape.FetchProgressFunc) ([]*scrape.Page, error) {
	var pages []*scrape.Page

	err := c.walkSite(ctx, sourceURL, func(pageURL string, doc scrape.Document, err error) {
		if err != nil {
			if progress != nil {
				progress(scrape.FetchProgress{
					URL:       pageURL,
					Completed: len(pages),
					Error:     err,
				})
			}
			return
		}

		pages = append(pages, snapshot(pageURL, len(pages), doc))
		if progress != nil {
			progress(scrape.FetchProgress{
				URL:       pageURL,
				Completed: len(pages),
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// visitFunc receives the outcome of each frontier URL. doc is nil when
// err is non-nil.
type visitFunc func(pageURL string, doc scrape.Document, err error)

// walkSite drives the frontier loop shared by Crawl and Discoverer:
// seed the frontier with sourceURL, pop by priority, rate limit, fetch
// with retry, and push in-scope discovered links. Links are in scope
// when they share sourceURL's host and path prefix and pass the Filter.
func (c *Crawler) walkSite(ctx context.Context, sourceURL string, visit visitFunc) error {
	source, err := url.Parse(sourceURL)
	if err != nil {
		return scrape.Errorf(scrape.EINVALID, "invalid source URL %q: %v", sourceURL, err)
	}
	pathPrefix := source.Path

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = maxCrawlPages
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(scrape.DiscoveredLink{
		URL:      sourceURL,
		Priority: scrape.PriorityNavigation,
	})

	processed := 0
	for {
		link, ok := frontier.Pop()
		if !ok {
			break
		}
		if processed >= maxPages {
			break
		}
		processed++

		if ctx.Err() != nil {
			break
		}

		if c.Limiter != nil {
			linkURL, err := url.Parse(link.URL)
			if err != nil {
				visit(link.URL, nil, scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", link.URL, err))
				continue
			}
			if err := c.Limiter.Wait(ctx, linkURL.Host); err != nil {
				break
			}
		}

		doc, err := FetchWithRetryDelays(ctx, link.URL, c.Browser.Get, nil, c.delays())
		if err != nil {
			visit(link.URL, nil, err)
			continue
		}

		links, err := ExtractLinks(doc, link.URL)
		if err == nil {
			for _, discovered := range links {
				discoveredURL, err := url.Parse(discovered.URL)
				if err != nil {
					continue
				}
				if discoveredURL.Host != source.Host {
					continue
				}
				if !strings.HasPrefix(discoveredURL.Path, pathPrefix) {
					continue
				}
				if !c.Filter.Match(discovered.URL) {
					continue
				}
				frontier.Push(discovered)
			}
		}

		visit(link.URL, doc, nil)
	}

	return nil
}

func (c *Crawler) delays() []time.Duration {
	if c.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return c.RetryDelays
}

// snapshot captures a document as a page record.
func snapshot(rawURL string, position int, doc scrape.Document) *scrape.Page {
	html := doc.HTML()
	return &scrape.Page{
		URL:         rawURL,
		Location:    doc.Location(),
		Title:       doc.Title(),
		HTML:        html,
		ContentHash: ComputeHash(html),
		Position:    position,
		FetchedAt:   time.Now().UTC(),
	}
}
