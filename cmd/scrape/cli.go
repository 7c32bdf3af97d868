package main

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Browser   scrape.Browser
	Fetcher   scrape.PageFetcher
	Crawler   *crawl.Crawler
	Sitemaps  scrape.SitemapService
	Store     scrape.PageStore
	Writer    scrape.PageWriter
	Extractor scrape.Extractor
	Converter scrape.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Get     GetCmd     `cmd:"" help:"Fetch pages and print or save them"`
	Crawl   CrawlCmd   `cmd:"" help:"Recursively fetch a site starting from a seed URL"`
	Sitemap SitemapCmd `cmd:"" help:"Discover a site's URLs through its sitemaps"`
}

// FetchFlags configure the fetch backend. Every command shares them.
type FetchFlags struct {
	Live         bool          `help:"Render pages in a headless browser instead of fetching static HTML"`
	Concurrency  int           `short:"c" default:"10" help:"Concurrent fetch limit"`
	RPS          float64       `name:"rps" default:"2" help:"Maximum requests per second per domain"`
	Timeout      time.Duration `short:"t" default:"15s" help:"Timeout per request"`
	MaxRedirects int           `default:"10" help:"Redirect limit per request"`
	UserAgent    string        `help:"User-Agent header to send"`
	Proxy        string        `help:"Proxy URL for outgoing requests"`
	Verbose      bool          `short:"v" help:"Log fetch activity to stderr"`
}

// OutputFlags configure what happens to fetched pages.
type OutputFlags struct {
	Format    string `short:"f" default:"html" enum:"html,text,markdown,article" help:"Output format"`
	Output    string `short:"o" help:"Write one file per page under this directory instead of printing"`
	Cache     string `help:"SQLite snapshot cache to read and update"`
	Extractor string `default:"trafilatura" enum:"trafilatura,readability" help:"Content extractor used by the article format"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	FetchFlags  `embed:""`
	OutputFlags `embed:""`

	Selector string   `short:"s" help:"Print only elements matching this CSS selector"`
	Attr     string   `help:"With --selector, print this attribute instead of the element markup"`
	URLs     []string `arg:"" name:"url" help:"URLs to fetch"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	FetchFlags  `embed:""`
	OutputFlags `embed:""`

	MaxPages int      `default:"1000" help:"Stop after fetching this many pages"`
	Filter   []string `short:"F" name:"filter" help:"Filter followed URLs by regex (repeatable)"`
	URL      string   `arg:"" help:"Seed URL"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct {
	FetchFlags  `embed:""`
	OutputFlags `embed:""`

	List   bool     `help:"Print discovered URLs without fetching them"`
	Filter []string `short:"F" name:"filter" help:"Filter URLs by regex (repeatable)"`
	URL    string   `arg:"" help:"Site URL"`
}

// compileFilter compiles regex patterns into a URL filter.
// A nil filter (no patterns) passes every URL.
func compileFilter(patterns []string) (*scrape.URLFilter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	filter := &scrape.URLFilter{}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, scrape.Errorf(scrape.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	return filter, nil
}

// cachePages stores page snapshots when a cache is configured.
func cachePages(deps *Dependencies, pages []*scrape.Page) error {
	if deps.Store == nil {
		return nil
	}
	for _, page := range pages {
		if err := deps.Store.SavePage(deps.Ctx, page); err != nil {
			fmt.Fprintf(deps.Stderr, "error caching %s: %v\n", page.URL, err)
			return err
		}
	}
	return nil
}

// writePages saves pages through the configured writer, committing only
// when every page saved so partial output never replaces a previous run.
func writePages(deps *Dependencies, pages []*scrape.Page) error {
	var bytes int
	for _, page := range pages {
		if err := deps.Writer.Save(deps.Ctx, page); err != nil {
			_ = deps.Writer.Abort()
			fmt.Fprintf(deps.Stderr, "error saving %s: %v\n", page.URL, err)
			return err
		}
		bytes += len(page.HTML)
	}

	if len(pages) == 0 {
		_ = deps.Writer.Abort()
		fmt.Fprintln(deps.Stdout, "No pages saved")
		return nil
	}

	if err := deps.Writer.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d pages (%s)\n", len(pages), crawl.FormatBytes(bytes))
	return nil
}
