package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/scrape"
	"github.com/fwojciec/scrape/mock"
	scrapeslog "github.com/fwojciec/scrape/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs extractor name and sizes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(html string) (*scrape.ExtractResult, error) {
				return &scrape.ExtractResult{Title: "T", ContentHTML: "<p>main</p>"}, nil
			},
		}

		extractor := scrapeslog.NewLoggingExtractor(inner, "trafilatura", logger)
		result, err := extractor.Extract("<html><body><p>main</p></body></html>")

		require.NoError(t, err)
		require.NotNil(t, result)
		output := buf.String()
		assert.Contains(t, output, "extract")
		assert.Contains(t, output, "extractor=trafilatura")
		assert.Contains(t, output, "bytes_in=37")
		assert.Contains(t, output, "bytes_out=11")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(html string) (*scrape.ExtractResult, error) {
				return nil, errors.New("no content found")
			},
		}

		extractor := scrapeslog.NewLoggingExtractor(inner, "readability", logger)
		_, err := extractor.Extract("<html></html>")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "extract")
		assert.Contains(t, output, "err=\"no content found\"")
	})
}
