// Package extract carves bounded-radius induced subgraphs out of a link graph.
//
// A neighborhood of radius k around a seed is the set of vertices lying on a
// directed walk v0 -> ... -> vk whose centre vertex v(k/2) is the seed.
// Centring the walk keeps both inbound and outbound context. Walks may
// revisit vertices, so self-loops and short cycles count as valid walks.
package extract

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/table"
	"golang.org/x/xerrors"
)

// MaxHops is the largest supported neighborhood radius.
const MaxHops = 3

// ErrInvalidHops is returned for a radius outside [1, MaxHops].
var ErrInvalidHops = xerrors.New("k-hops must be between 1 and 3")

// Extract returns the subgraph induced by all length-k walks centred on
// seedID. When no such walk exists the returned subgraph is empty.
//
// The walks are never materialized. Predecessor and successor layers are
// grown breadth-first, one link scan per depth serving both directions, and
// then pruned from the outermost layer inward so only vertices that sit on a
// complete walk remain. The edges are the full link relation restricted to
// the surviving vertices, which keeps cross links between vertices of the
// same radius.
func Extract(ctx context.Context, src graph.Source, seedID int64, k int) (*Subgraph, error) {
	if k < 1 || k > MaxHops {
		return nil, xerrors.Errorf("extract with k=%d: %w", k, ErrInvalidHops)
	}

	var (
		backDepth = k / 2
		fwdDepth  = k - backDepth
		back      = newLayers(seedID, backDepth)
		fwd       = newLayers(seedID, fwdDepth)
	)

	for d := 1; d <= fwdDepth; d++ {
		// An empty frontier means no walk can be completed.
		if fwd.nodes[d-1].Len() == 0 || (d <= backDepth && back.nodes[d-1].Len() == 0) {
			return &Subgraph{}, nil
		}

		filter := graph.LinkFilter{Src: fwd.nodes[d-1], MatchEither: true}
		if d <= backDepth {
			filter.Dst = back.nodes[d-1]
		}
		edges, err := scanLinks(ctx, src, filter)
		if err != nil {
			return nil, xerrors.Errorf("expand layer %d around %d: %w", d, seedID, err)
		}

		for _, e := range edges {
			if fwd.nodes[d-1].Has(e.Src) {
				fwd.add(d, e.Src, e.Dst)
			}
			if d <= backDepth && back.nodes[d-1].Has(e.Dst) {
				back.add(d, e.Dst, e.Src)
			}
		}
	}

	if !fwd.prune() || !back.prune() {
		return &Subgraph{}, nil
	}

	all := append(fwd.tables(), back.tables()...)
	ids := table.MergeDistinct(func(id int64) int64 { return id }, all...).
		OrderBy(func(a, b int64) bool { return a < b })

	return induce(ctx, src, ids.Rows())
}

// Seed looks up the page with the given id.
func Seed(ctx context.Context, src graph.Source, id int64) (*graph.Vertex, error) {
	it, err := src.Pages(ctx, graph.PageFilter{IDs: graph.NewIDSet(id)})
	if err != nil {
		return nil, xerrors.Errorf("lookup seed %d: %w", id, err)
	}
	pages, err := graph.CollectVertices(it)
	if err != nil {
		return nil, xerrors.Errorf("lookup seed %d: %w", id, err)
	}
	if len(pages) == 0 {
		return nil, xerrors.Errorf("lookup seed %d: %w", id, graph.ErrNotFound)
	}
	return pages[0], nil
}

// induce builds the subgraph induced by ids, which must be sorted. Vertex
// attributes come from the page relation; ids without a page row are kept
// with empty attributes since the topology comes from the link relation.
func induce(ctx context.Context, src graph.Source, ids []int64) (*Subgraph, error) {
	if len(ids) == 0 {
		return &Subgraph{}, nil
	}
	set := graph.NewIDSet(ids...)

	edges, err := scanLinks(ctx, src, graph.LinkFilter{Src: set, Dst: set})
	if err != nil {
		return nil, xerrors.Errorf("restrict links: %w", err)
	}
	sortEdges(edges)

	it, err := src.Pages(ctx, graph.PageFilter{IDs: set})
	if err != nil {
		return nil, xerrors.Errorf("lookup pages: %w", err)
	}
	pages, err := graph.CollectVertices(it)
	if err != nil {
		return nil, xerrors.Errorf("lookup pages: %w", err)
	}

	byID := make(map[int64]*graph.Vertex, len(pages))
	for _, v := range pages {
		byID[v.ID] = v
	}
	sg := &Subgraph{Vertices: make([]graph.Vertex, 0, len(ids)), Edges: edges}
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			sg.Vertices = append(sg.Vertices, *v)
			continue
		}
		sg.Vertices = append(sg.Vertices, graph.Vertex{ID: id})
	}
	return sg, nil
}

// scanLinks drains a filtered link scan. The iterator is closed before
// returning so stores with a single connection can serve the next scan.
func scanLinks(ctx context.Context, src graph.Source, filter graph.LinkFilter) ([]graph.Edge, error) {
	it, err := src.Links(ctx, filter)
	if err != nil {
		return nil, err
	}
	list, err := graph.CollectEdges(it)
	if err != nil {
		return nil, err
	}
	edges := make([]graph.Edge, len(list))
	for i, e := range list {
		edges[i] = *e
	}
	return edges, nil
}
