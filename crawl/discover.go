package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/scrape"
)

// Compile-time interface verification.
var _ scrape.URLSource = (*Discoverer)(nil)

// Discoverer finds page URLs for a site. It tries sitemap discovery
// first and falls back to recursive link-following when the sitemap
// yields nothing.
type Discoverer struct {
	// Sitemaps performs sitemap-based discovery. Nil skips straight to
	// recursive discovery.
	Sitemaps scrape.SitemapService

	// Browser fetches pages during recursive discovery.
	Browser scrape.Browser

	// Limiter throttles recursive discovery per domain. Nil disables
	// throttling.
	Limiter scrape.DomainLimiter

	// Filter restricts discovered URLs. Nil keeps everything in scope.
	Filter *scrape.URLFilter

	// MaxPages caps how many pages recursive discovery visits.
	// Defaults to 1000.
	MaxPages int

	// RetryDelays are the backoff delays between fetch attempts.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration
}

// Discover returns the URLs to fetch for sourceURL. Sitemap results win
// when present; otherwise the site is walked recursively from sourceURL
// and every successfully fetched in-scope URL is collected.
func (d *Discoverer) Discover(ctx context.Context, sourceURL string) ([]string, error) {
	var sitemapErr error
	if d.Sitemaps != nil {
		urls, err := d.Sitemaps.DiscoverURLs(ctx, sourceURL, d.Filter)
		if err == nil && len(urls) > 0 {
			return urls, nil
		}
		sitemapErr = err
	}

	if d.Browser == nil {
		if sitemapErr != nil {
			return nil, sitemapErr
		}
		return nil, nil
	}

	// Minimal Crawler carrying just the dependencies discovery needs.
	c := &Crawler{
		Browser:     d.Browser,
		Limiter:     d.Limiter,
		Filter:      d.Filter,
		MaxPages:    d.MaxPages,
		RetryDelays: d.RetryDelays,
	}

	var urls []string
	err := c.walkSite(ctx, sourceURL, func(pageURL string, doc scrape.Document, err error) {
		if err == nil {
			urls = append(urls, pageURL)
		}
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}
