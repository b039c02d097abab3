package graph

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/Ahmed-Sermani/wikicast/graph Source

import (
	"context"

	"golang.org/x/xerrors"
)

// ErrNotFound is returned when a lookup does not match any page.
var ErrNotFound = xerrors.New("not found")

type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error
}

// Vertex is a page of the link graph. Attrs holds any page columns besides
// the id and title; they are carried through untouched.
type Vertex struct {
	ID    int64
	Title string
	Attrs map[string]string
}

type VertexIterator interface {
	Iterator
	Vertex() *Vertex
}

// Edge is a directed page link. The same (Src, Dst) pair may appear more than
// once in a relation.
type Edge struct {
	Src int64
	Dst int64
}

type EdgeIterator interface {
	Iterator
	Edge() *Edge
}

// View is the number of times a page was viewed on a given day. An empty Date
// stands for a missing date.
type View struct {
	PageID int64
	Date   string
	Count  int64
}

type ViewIterator interface {
	Iterator
	View() *View
}

// PageFilter restricts a page scan. A nil IDs set selects every page.
type PageFilter struct {
	IDs IDSet
}

// Match reports whether v is selected by the filter.
func (f PageFilter) Match(v *Vertex) bool {
	return f.IDs == nil || f.IDs.Has(v.ID)
}

// LinkFilter restricts a link scan by endpoint. A nil set places no
// restriction on its endpoint. By default both restrictions must hold; with
// MatchEither a link is selected when any non-nil restriction holds.
type LinkFilter struct {
	Src IDSet
	Dst IDSet

	MatchEither bool
}

// Match reports whether e is selected by the filter.
func (f LinkFilter) Match(e *Edge) bool {
	if f.MatchEither {
		return (f.Src != nil && f.Src.Has(e.Src)) || (f.Dst != nil && f.Dst.Has(e.Dst))
	}
	return (f.Src == nil || f.Src.Has(e.Src)) && (f.Dst == nil || f.Dst.Has(e.Dst))
}

// ViewFilter restricts a view scan. A nil PageIDs set selects every row.
type ViewFilter struct {
	PageIDs IDSet
}

// Match reports whether v is selected by the filter.
func (f ViewFilter) Match(v *View) bool {
	return f.PageIDs == nil || f.PageIDs.Has(v.PageID)
}

// Source exposes the three relations of a link graph: pages, page links and
// daily page views. Implementations may push the filters down to the
// underlying engine.
type Source interface {
	Pages(ctx context.Context, filter PageFilter) (VertexIterator, error)
	Links(ctx context.Context, filter LinkFilter) (EdgeIterator, error)
	Views(ctx context.Context, filter ViewFilter) (ViewIterator, error)
}

// Writer is implemented by sources that can be loaded with data.
type Writer interface {
	InsertPages(ctx context.Context, pages []*Vertex) error
	InsertLinks(ctx context.Context, links []*Edge) error
	InsertViews(ctx context.Context, views []*View) error
}
