package scrape

import (
	"context"
	"time"
)

// Page is a persisted snapshot of one fetched document.
type Page struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Location    string    `json:"location"`
	Title       string    `json:"title"`
	HTML        string    `json:"html"`
	ContentHash string    `json:"contentHash"`
	Position    int       `json:"position"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// PageStore represents a service for persisting page snapshots, keyed by the
// URL they were requested as.
type PageStore interface {
	// SavePage stores a page, replacing any existing snapshot for its URL.
	SavePage(ctx context.Context, page *Page) error

	// FindPageByURL retrieves the snapshot for a URL.
	// Returns ENOTFOUND if no snapshot exists.
	FindPageByURL(ctx context.Context, url string) (*Page, error)

	// FindPages retrieves snapshots matching the filter, most recently
	// fetched first.
	FindPages(ctx context.Context, filter PageFilter) ([]*Page, error)

	// DeletePageByURL removes the snapshot for a URL.
	// Returns ENOTFOUND if no snapshot exists.
	DeletePageByURL(ctx context.Context, url string) error
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
