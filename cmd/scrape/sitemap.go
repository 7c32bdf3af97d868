package main

import (
	"fmt"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/crawl"
)

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	filter, err := compileFilter(c.Filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrape.ErrorMessage(err))
		return err
	}

	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.URL, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrape.ErrorMessage(err))
		return err
	}

	// List mode: show URLs without fetching
	if c.List {
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	if len(urls) == 0 {
		return scrape.Errorf(scrape.ENOTFOUND, "no sitemap URLs found for %s", c.URL)
	}

	fmt.Fprintf(deps.Stdout, "Found %d URLs\n", len(urls))

	// Fetch pages with progress reporting
	progress := func(p scrape.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "skip %s: %v\n", p.URL, p.Error)
		}
		fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", p.Completed, p.Total, crawl.TruncateURL(p.URL, 40))
	}

	pages, err := deps.Fetcher.FetchAll(deps.Ctx, urls, progress)
	if err != nil {
		if deps.Writer != nil {
			_ = deps.Writer.Abort()
		}
		fmt.Fprintf(deps.Stderr, "error fetching: %v\n", err)
		return err
	}

	// Clear progress line
	fmt.Fprintf(deps.Stdout, "\r%80s\r", "")

	if err := cachePages(deps, pages); err != nil {
		return err
	}

	if deps.Writer != nil {
		return writePages(deps, pages)
	}

	for _, page := range pages {
		fmt.Fprintln(deps.Stdout, page.URL)
	}
	fmt.Fprintf(deps.Stdout, "Fetched %d pages\n", len(pages))

	return nil
}
