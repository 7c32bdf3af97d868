package mock

import (
	"context"

	"github.com/fwojciec/scrape"
)

var _ scrape.PageWriter = (*PageWriter)(nil)

// PageWriter is a mock implementation of scrape.PageWriter.
type PageWriter struct {
	SaveFn   func(ctx context.Context, page *scrape.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (w *PageWriter) Save(ctx context.Context, page *scrape.Page) error {
	return w.SaveFn(ctx, page)
}

func (w *PageWriter) Commit() error {
	return w.CommitFn()
}

func (w *PageWriter) Abort() error {
	return w.AbortFn()
}
