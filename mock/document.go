package mock

import (
	"github.com/fwojciec/scrape"
)

var _ scrape.Document = (*Document)(nil)

// Document is a mock implementation of scrape.Document.
type Document struct {
	LocationFn func() string
	RootFn     func() scrape.Element
	TitleFn    func() string
	HeadFn     func() scrape.Element
	BodyFn     func() scrape.Element
	HTMLFn     func() string
}

func (d *Document) Location() string {
	return d.LocationFn()
}

func (d *Document) Root() scrape.Element {
	return d.RootFn()
}

func (d *Document) Title() string {
	return d.TitleFn()
}

func (d *Document) Head() scrape.Element {
	return d.HeadFn()
}

func (d *Document) Body() scrape.Element {
	return d.BodyFn()
}

func (d *Document) HTML() string {
	return d.HTMLFn()
}
