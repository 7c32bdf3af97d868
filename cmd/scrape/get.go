package main

import (
	"fmt"

	"github.com/fwojciec/scrape"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	pages := make([]*scrape.Page, len(c.URLs))

	// Serve cached snapshots and collect the URLs that need fetching
	var missing []string
	for i, rawURL := range c.URLs {
		if deps.Store != nil {
			if cached, err := deps.Store.FindPageByURL(deps.Ctx, rawURL); err == nil {
				pages[i] = cached
				continue
			}
		}
		missing = append(missing, rawURL)
	}

	if len(missing) > 0 {
		progress := func(p scrape.FetchProgress) {
			if p.Error != nil {
				fmt.Fprintf(deps.Stderr, "skip %s: %v\n", p.URL, p.Error)
			}
		}

		fetched, err := deps.Fetcher.FetchAll(deps.Ctx, missing, progress)
		if err != nil {
			if deps.Writer != nil {
				_ = deps.Writer.Abort()
			}
			fmt.Fprintf(deps.Stderr, "error fetching: %v\n", err)
			return err
		}

		if err := cachePages(deps, fetched); err != nil {
			return err
		}

		// Slot fetched pages back into request order. Failed URLs leave
		// nil gaps which are dropped below.
		byURL := make(map[string][]*scrape.Page)
		for _, page := range fetched {
			byURL[page.URL] = append(byURL[page.URL], page)
		}
		for i, rawURL := range c.URLs {
			if pages[i] != nil {
				continue
			}
			if got := byURL[rawURL]; len(got) > 0 {
				pages[i] = got[0]
				byURL[rawURL] = got[1:]
			}
		}
	}

	kept := pages[:0]
	for _, page := range pages {
		if page != nil {
			kept = append(kept, page)
		}
	}

	if len(kept) == 0 {
		return scrape.Errorf(scrape.ENOTFOUND, "no pages fetched")
	}

	if deps.Writer != nil {
		return writePages(deps, kept)
	}

	for _, page := range kept {
		if err := c.print(deps, page); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrape.ErrorMessage(err))
			return err
		}
	}

	return nil
}

// print writes one page to stdout in the requested format.
func (c *GetCmd) print(deps *Dependencies, page *scrape.Page) error {
	if c.Selector != "" {
		root, err := c.parseRoot(deps, page)
		if err != nil {
			return err
		}
		for el := range root.Select(c.Selector).All() {
			switch {
			case c.Attr != "":
				if value, ok := el.LookupAttr(c.Attr); ok {
					fmt.Fprintln(deps.Stdout, value)
				}
			case c.Format == "text":
				fmt.Fprintln(deps.Stdout, el.Text())
			default:
				fmt.Fprintln(deps.Stdout, el.OuterHTML())
			}
		}
		return nil
	}

	switch c.Format {
	case "text":
		root, err := c.parseRoot(deps, page)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, root.Text())
	case "markdown":
		md, err := deps.Converter.Convert(page.HTML)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, md)
	case "article":
		result, err := deps.Extractor.Extract(page.HTML)
		if err != nil {
			return err
		}
		md, err := deps.Converter.Convert(result.ContentHTML)
		if err != nil {
			return err
		}
		if result.Title != "" {
			fmt.Fprintf(deps.Stdout, "# %s\n\n", result.Title)
		}
		fmt.Fprintln(deps.Stdout, md)
	default:
		fmt.Fprintln(deps.Stdout, page.HTML)
	}

	return nil
}

// parseRoot re-parses a page snapshot and returns its root element.
func (c *GetCmd) parseRoot(deps *Dependencies, page *scrape.Page) (scrape.Element, error) {
	doc, err := deps.Browser.ParseString(deps.Ctx, page.HTML)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, scrape.Errorf(scrape.EPARSE, "no document root for %s", page.URL)
	}
	return root, nil
}
