package mock

import (
	"context"

	"github.com/fwojciec/scrape"
)

var _ scrape.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of scrape.URLFrontier.
type URLFrontier struct {
	PushFn func(link scrape.DiscoveredLink) bool
	PopFn  func() (scrape.DiscoveredLink, bool)
	LenFn  func() int
	SeenFn func(url string) bool
}

func (f *URLFrontier) Push(link scrape.DiscoveredLink) bool {
	return f.PushFn(link)
}

func (f *URLFrontier) Pop() (scrape.DiscoveredLink, bool) {
	return f.PopFn()
}

func (f *URLFrontier) Len() int {
	return f.LenFn()
}

func (f *URLFrontier) Seen(url string) bool {
	return f.SeenFn(url)
}

var _ scrape.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of scrape.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
