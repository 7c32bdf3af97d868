package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/scrape"
)

// Ensure LoggingExtractor implements scrape.Extractor.
var _ scrape.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   scrape.Extractor
	name   string
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. The name identifies
// the wrapped implementation in log output.
func NewLoggingExtractor(next scrape.Extractor, name string, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, name: name, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) Extract(html string) (result *scrape.ExtractResult, err error) {
	defer func(begin time.Time) {
		out := 0
		if result != nil {
			out = len(result.ContentHTML)
		}
		e.logger.Info("extract",
			"extractor", e.name,
			"bytes_in", len(html),
			"bytes_out", out,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
