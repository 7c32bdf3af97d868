package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where PageWriter is expected
	var _ scrape.PageWriter = &mock.PageWriter{}
}

func TestPageWriter_Save(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SaveFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *scrape.Page
		w := &mock.PageWriter{
			SaveFn: func(_ context.Context, page *scrape.Page) error {
				calledWith = page
				return nil
			},
		}

		page := &scrape.Page{
			URL:   "https://example.com/doc",
			Title: "Test Doc",
			HTML:  "<html><body>Test content</body></html>",
		}

		err := w.Save(context.Background(), page)

		require.NoError(t, err)
		assert.Equal(t, page, calledWith)
	})
}
