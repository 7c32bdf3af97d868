package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scrape"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrape.PageStore = (*PageStore)(nil)

// PageStore implements scrape.PageStore using SQLite.
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// SavePage stores a page, replacing any existing snapshot for its URL.
// Missing ID, FetchedAt, and ContentHash fields are filled in.
func (s *PageStore) SavePage(ctx context.Context, page *scrape.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}

	if page.ID == "" {
		page.ID = uuid.New().String()
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now().UTC()
	}
	if page.ContentHash == "" {
		page.ContentHash = hashContent(page.HTML)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, url, location, title, html, content_hash, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			id = excluded.id,
			location = excluded.location,
			title = excluded.title,
			html = excluded.html,
			content_hash = excluded.content_hash,
			position = excluded.position,
			fetched_at = excluded.fetched_at
	`, page.ID, page.URL, page.Location, page.Title, page.HTML, page.ContentHash,
		page.Position, page.FetchedAt.Format(time.RFC3339))

	return err
}

// FindPageByURL retrieves the snapshot for a URL.
func (s *PageStore) FindPageByURL(ctx context.Context, url string) (*scrape.Page, error) {
	var page scrape.Page
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, location, title, html, content_hash, position, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&page.ID, &page.URL, &page.Location, &page.Title, &page.HTML,
		&page.ContentHash, &page.Position, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, scrape.Errorf(scrape.ENOTFOUND, "page not found")
	}
	if err != nil {
		return nil, err
	}

	page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// FindPages retrieves snapshots matching the filter, most recently fetched
// first. Ties are broken by position.
func (s *PageStore) FindPages(ctx context.Context, filter scrape.PageFilter) ([]*scrape.Page, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, location, title, html, content_hash, position, fetched_at FROM pages WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY fetched_at DESC, position ASC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*scrape.Page
	for rows.Next() {
		var page scrape.Page
		var fetchedAt string

		if err := rows.Scan(&page.ID, &page.URL, &page.Location, &page.Title, &page.HTML,
			&page.ContentHash, &page.Position, &fetchedAt); err != nil {
			return nil, err
		}

		page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
		if err != nil {
			return nil, err
		}

		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

// DeletePageByURL removes the snapshot for a URL.
func (s *PageStore) DeletePageByURL(ctx context.Context, url string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE url = ?", url)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return scrape.Errorf(scrape.ENOTFOUND, "page not found")
	}

	return nil
}
