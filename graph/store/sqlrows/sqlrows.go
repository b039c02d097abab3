// Package sqlrows adapts database/sql result sets of the pages, pagelinks and
// pageviews tables to the graph iterator interfaces. The row layouts are
//
//	pages:     id, title, attrs (JSON object or NULL)
//	pagelinks: src, dst
//	pageviews: page_id, view_date (NULL for a missing date), view_count
package sqlrows

import (
	"database/sql"
	"encoding/json"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

// EncodeAttrs serializes page attributes for the attrs column.
func EncodeAttrs(attrs map[string]string) (sql.NullString, error) {
	if len(attrs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return sql.NullString{}, xerrors.Errorf("encode page attributes: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// EncodeDate maps a missing view date to NULL.
func EncodeDate(date string) sql.NullString {
	return sql.NullString{String: date, Valid: date != ""}
}

// NewVertexIterator wraps rows of the pages table.
func NewVertexIterator(rows *sql.Rows) graph.VertexIterator {
	return &vertexIterator{rows: rows}
}

// NewEdgeIterator wraps rows of the pagelinks table.
func NewEdgeIterator(rows *sql.Rows) graph.EdgeIterator {
	return &edgeIterator{rows: rows}
}

// NewViewIterator wraps rows of the pageviews table.
func NewViewIterator(rows *sql.Rows) graph.ViewIterator {
	return &viewIterator{rows: rows}
}

type vertexIterator struct {
	rows          *sql.Rows
	lastErr       error
	latchedVertex *graph.Vertex
}

func (i *vertexIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	var (
		v     = &graph.Vertex{}
		attrs sql.NullString
	)
	if i.lastErr = i.rows.Scan(&v.ID, &v.Title, &attrs); i.lastErr != nil {
		return false
	}
	if attrs.Valid && attrs.String != "" {
		if err := json.Unmarshal([]byte(attrs.String), &v.Attrs); err != nil {
			i.lastErr = xerrors.Errorf("decode attributes of page %d: %w", v.ID, err)
			return false
		}
	}
	i.latchedVertex = v
	return true
}

func (i *vertexIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

func (i *vertexIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return xerrors.Errorf("vertex iter: %w", err)
	}
	return nil
}

func (i *vertexIterator) Vertex() *graph.Vertex {
	return i.latchedVertex
}

type edgeIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedEdge *graph.Edge
}

func (i *edgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	edge := &graph.Edge{}
	if i.lastErr = i.rows.Scan(&edge.Src, &edge.Dst); i.lastErr != nil {
		return false
	}
	i.latchedEdge = edge
	return true
}

func (i *edgeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

func (i *edgeIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return xerrors.Errorf("edge iter: %w", err)
	}
	return nil
}

func (i *edgeIterator) Edge() *graph.Edge {
	return i.latchedEdge
}

type viewIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedView *graph.View
}

func (i *viewIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	var (
		view = &graph.View{}
		date sql.NullString
	)
	if i.lastErr = i.rows.Scan(&view.PageID, &date, &view.Count); i.lastErr != nil {
		return false
	}
	view.Date = date.String
	i.latchedView = view
	return true
}

func (i *viewIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

func (i *viewIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return xerrors.Errorf("view iter: %w", err)
	}
	return nil
}

func (i *viewIterator) View() *graph.View {
	return i.latchedView
}
