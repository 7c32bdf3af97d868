package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scrape/crawl"
	"github.com/fwojciec/scrape/fs"
	"github.com/fwojciec/scrape/htmltomarkdown"
	scrapehttp "github.com/fwojciec/scrape/http"
	"github.com/fwojciec/scrape/readability"
	"github.com/fwojciec/scrape/rod"
	scrapeslog "github.com/fwojciec/scrape/slog"
	"github.com/fwojciec/scrape/sqlite"
	"github.com/fwojciec/scrape/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the snapshot cache, opened when --cache is set.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrape"),
		kong.Description("Fetch, query, and snapshot web pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Every command carries the same fetch and output flag sets
	var fetch FetchFlags
	var output OutputFlags
	switch cmd {
	case "get":
		fetch, output = cli.Get.FetchFlags, cli.Get.OutputFlags
	case "crawl":
		fetch, output = cli.Crawl.FetchFlags, cli.Crawl.OutputFlags
	case "sitemap":
		fetch, output = cli.Sitemap.FetchFlags, cli.Sitemap.OutputFlags
	}

	// Pick the fetch backend
	if fetch.Live {
		opts := []rod.Option{rod.WithTimeout(fetch.Timeout)}
		if fetch.UserAgent != "" {
			opts = append(opts, rod.WithUserAgent(fetch.UserAgent))
		}
		if fetch.Proxy != "" {
			opts = append(opts, rod.WithProxy(fetch.Proxy))
		}
		browser, err := rod.NewBrowser(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		deps.Browser = browser
	} else {
		opts := []scrapehttp.Option{
			scrapehttp.WithTimeout(fetch.Timeout),
			scrapehttp.WithMaxRedirects(fetch.MaxRedirects),
		}
		if fetch.UserAgent != "" {
			opts = append(opts, scrapehttp.WithUserAgent(fetch.UserAgent))
		}
		if fetch.Proxy != "" {
			opts = append(opts, scrapehttp.WithProxy(fetch.Proxy))
		}
		deps.Browser = scrapehttp.NewBrowser(opts...)
	}
	defer deps.Browser.Close()

	deps.Sitemaps = scrapehttp.NewSitemapService(nil)

	if fetch.Verbose {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		deps.Browser = scrapeslog.NewLoggingBrowser(deps.Browser, logger)
		deps.Sitemaps = scrapeslog.NewLoggingSitemapService(deps.Sitemaps, logger)
	}

	// Content pipeline for the markdown and article formats
	switch output.Extractor {
	case "readability":
		deps.Extractor = readability.NewExtractor()
	default:
		deps.Extractor = trafilatura.NewExtractor()
	}
	deps.Converter = htmltomarkdown.NewConverter()

	// The crawler doubles as the batch fetcher
	deps.Crawler = &crawl.Crawler{
		Browser:     deps.Browser,
		Limiter:     crawl.NewDomainLimiter(fetch.RPS),
		Concurrency: fetch.Concurrency,
	}
	deps.Fetcher = deps.Crawler

	// Snapshot cache
	if output.Cache != "" {
		m.DB = sqlite.NewDB(output.Cache)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open cache at %q: %w", output.Cache, err)
		}
		defer m.Close()
		deps.Store = sqlite.NewPageStore(m.DB)
	}

	// File output
	if output.Output != "" {
		dir := filepath.Clean(output.Output)
		render, ext := renderFunc(output.Format, deps)
		deps.Writer = fs.NewWriter(filepath.Dir(dir), filepath.Base(dir), ext, render)
	}

	return kongCtx.Run(deps)
}
