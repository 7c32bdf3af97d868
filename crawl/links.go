package crawl

import (
	"net/url"
	"strings"

	"github.com/fwojciec/scrape"
)

// linkRegions pairs region selectors with the priority of links found
// there. Regions are scanned highest priority first; a URL keeps the
// priority of the first region it appears in.
var linkRegions = []struct {
	selector string
	priority scrape.LinkPriority
}{
	{"nav a[href], header a[href], aside a[href]", scrape.PriorityNavigation},
	{"a[href]", scrape.PriorityContent},
}

// ExtractLinks returns the document's same-host links resolved against
// baseURL, highest priority first. Fragments are stripped during
// resolution; fragment-only, mailto:, javascript:, tel:, and data:
// links are skipped.
func ExtractLinks(doc scrape.Document, baseURL string) ([]scrape.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, scrape.Errorf(scrape.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	var links []scrape.DiscoveredLink
	seen := make(map[string]bool)

	for _, region := range linkRegions {
		for el := range root.Select(region.selector).All() {
			href, ok := el.LookupAttr("href")
			if !ok || href == "" {
				continue
			}

			resolved := resolveLink(base, href)
			if resolved == "" || seen[resolved] {
				continue
			}
			seen[resolved] = true

			links = append(links, scrape.DiscoveredLink{
				URL:      resolved,
				Priority: region.priority,
				Text:     el.Text(),
			})
		}
	}

	return links, nil
}

// resolveLink resolves href against base and returns its fragment-free
// absolute form, or "" when the link is not a followable same-host
// http(s) URL.
func resolveLink(base *url.URL, href string) string {
	if strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host != base.Host {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
