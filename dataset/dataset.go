// Package dataset assembles the artifact bundle of a sampling run: the ranked
// vertex table, the edge table, the per-vertex view time series and the
// optional seed record.
package dataset

import (
	"context"
	"sort"

	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/Ahmed-Sermani/wikicast/table"
	"golang.org/x/xerrors"
)

// VertexOrder selects the row order of the vertex table.
type VertexOrder int

const (
	// OrderByScore sorts vertices by descending PageRank, ties by id.
	OrderByScore VertexOrder = iota

	// KeepOrder keeps the order of the subgraph vertices. Random sample
	// runs use it to keep the component reducer's discovery order.
	//
	// TODO: seeded and random runs disagree on the vertex order
	// of mapping.csv; settle on one once the forecasting side states which
	// it relies on.
	KeepOrder
)

func (o VertexOrder) String() string {
	if o == KeepOrder {
		return "keep"
	}
	return "score"
}

// RankedVertex is a vertex table row.
type RankedVertex struct {
	graph.Vertex
	PageRank float64
}

// Bundle is the persisted output of a run.
type Bundle struct {
	Vertices []RankedVertex
	Edges    []graph.Edge

	// AttrColumns lists the attribute keys found on any vertex, sorted.
	AttrColumns []string

	// TimeSeries has one row per vertex with at least one dated view and
	// one column per date.
	TimeSeries *table.Pivoted

	// Seed is only set for seeded runs.
	Seed *graph.Vertex
}

// Assemble builds the bundle of sg. Vertices without a score are dropped from
// the vertex table.
func Assemble(ctx context.Context, views graph.Source, sg *extract.Subgraph, scores map[int64]float64, seed *graph.Vertex, order VertexOrder) (*Bundle, error) {
	ts, err := TimeSeries(ctx, views, sg.IDSet())
	if err != nil {
		return nil, err
	}

	vertices := table.New(sg.Vertices...)
	var ranked table.Table[RankedVertex]
	switch order {
	case OrderByScore:
		ranked = table.Join(
			table.New(ranker.Order(scores)...), vertices,
			func(s ranker.Score) int64 { return s.ID },
			func(v graph.Vertex) int64 { return v.ID },
			func(s ranker.Score, v graph.Vertex) RankedVertex { return RankedVertex{Vertex: v, PageRank: s.Score} },
		)
	case KeepOrder:
		ranked = table.Join(
			vertices, table.New(ranker.Order(scores)...),
			func(v graph.Vertex) int64 { return v.ID },
			func(s ranker.Score) int64 { return s.ID },
			func(v graph.Vertex, s ranker.Score) RankedVertex { return RankedVertex{Vertex: v, PageRank: s.Score} },
		)
	default:
		return nil, xerrors.Errorf("unsupported vertex order %d", order)
	}

	return &Bundle{
		Vertices:    ranked.Rows(),
		Edges:       sg.Edges,
		AttrColumns: attrColumns(sg.Vertices),
		TimeSeries:  ts,
		Seed:        seed,
	}, nil
}

// TimeSeries pivots the dated views of ids into one column per date, keeping
// the minimum count when a page has several rows for the same date. Pages
// without any dated view get no row.
func TimeSeries(ctx context.Context, views graph.Source, ids graph.IDSet) (*table.Pivoted, error) {
	if ids.Len() == 0 {
		return &table.Pivoted{}, nil
	}

	it, err := views.Views(ctx, graph.ViewFilter{PageIDs: ids})
	if err != nil {
		return nil, xerrors.Errorf("scan views: %w", err)
	}
	rows, err := graph.CollectViews(it)
	if err != nil {
		return nil, xerrors.Errorf("scan views: %w", err)
	}

	dated := table.New(rows...).Filter(func(v *graph.View) bool { return v.Date != "" })
	return table.PivotMin(dated,
		func(v *graph.View) int64 { return v.PageID },
		func(v *graph.View) string { return v.Date },
		func(v *graph.View) int64 { return v.Count },
	), nil
}

func attrColumns(vertices []graph.Vertex) []string {
	seen := make(map[string]struct{})
	for _, v := range vertices {
		for k := range v.Attrs {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
