package main

import (
	"strings"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/fs"
	"github.com/fwojciec/scrape/goquery"
)

// renderFunc returns the page renderer and file extension for an output
// format. The html format writes raw snapshots and needs no renderer.
func renderFunc(format string, deps *Dependencies) (fs.RenderFunc, string) {
	switch format {
	case "text":
		return renderText, ".txt"
	case "markdown":
		return func(page *scrape.Page) (string, error) {
			md, err := deps.Converter.Convert(page.HTML)
			if err != nil {
				return "", err
			}
			return fs.FormatPage(page, md), nil
		}, ".md"
	case "article":
		return func(page *scrape.Page) (string, error) {
			result, err := deps.Extractor.Extract(page.HTML)
			if err != nil {
				return "", err
			}
			md, err := deps.Converter.Convert(result.ContentHTML)
			if err != nil {
				return "", err
			}
			if result.Title != "" {
				titled := *page
				titled.Title = result.Title
				page = &titled
			}
			return fs.FormatPage(page, md), nil
		}, ".md"
	default:
		return nil, ".html"
	}
}

// renderText flattens a snapshot to its visible text.
func renderText(page *scrape.Page) (string, error) {
	doc, err := goquery.Parse(strings.NewReader(page.HTML), page.Location)
	if err != nil {
		return "", err
	}
	return doc.Root().Text() + "\n", nil
}
