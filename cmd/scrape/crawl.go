package main

import (
	"fmt"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	// Compile filters up front so a bad pattern fails before any fetch
	filter, err := compileFilter(c.Filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrape.ErrorMessage(err))
		return err
	}

	deps.Crawler.Filter = filter
	deps.Crawler.MaxPages = c.MaxPages

	// The total is unknown while the walk is in progress
	progress := func(p scrape.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "skip %s: %v\n", p.URL, p.Error)
			return
		}
		fmt.Fprintf(deps.Stdout, "\r[%d] %s", p.Completed, crawl.TruncateURL(p.URL, 60))
	}

	pages, err := deps.Crawler.Crawl(deps.Ctx, c.URL, progress)
	if err != nil {
		if deps.Writer != nil {
			_ = deps.Writer.Abort()
		}
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
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
