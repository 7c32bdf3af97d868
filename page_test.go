package scrape_test

import (
	"testing"

	"github.com/fwojciec/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid page passes", func(t *testing.T) {
		t.Parallel()

		page := &scrape.Page{URL: "https://example.com/docs"}

		assert.NoError(t, page.Validate())
	})

	t.Run("missing URL returns EINVALID", func(t *testing.T) {
		t.Parallel()

		page := &scrape.Page{Title: "orphan"}

		err := page.Validate()

		require.Error(t, err)
		assert.Equal(t, scrape.EINVALID, scrape.ErrorCode(err))
		assert.Equal(t, "page URL required", scrape.ErrorMessage(err))
	})
}
