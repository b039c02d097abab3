// Package component reduces a sampled subgraph to the weakly connected
// component of its best ranked vertex.
//
// Random vertex samples usually fall apart into several components once the
// edges are restricted to the sample. The component holding the top ranked
// vertex is kept on the assumption that it is the dominant one; nothing
// checks that it actually is the largest.
package component

import (
	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/Ahmed-Sermani/wikicast/table"
	"golang.org/x/xerrors"
)

// ErrUnknownVertex is returned when the top ranked vertex is not part of the
// subgraph being reduced.
var ErrUnknownVertex = xerrors.New("top ranked vertex is not part of the subgraph")

// Reduce returns the weakly connected component of sg that contains
// ranked[0]. Vertices are listed in breadth-first discovery order starting
// at the top vertex with neighbours visited by ascending id. The edges are
// those of sg with both endpoints in the component.
func Reduce(sg *extract.Subgraph, ranked []ranker.Score) (*extract.Subgraph, error) {
	if len(ranked) == 0 || sg.Empty() {
		return &extract.Subgraph{}, nil
	}

	byID := make(map[int64]graph.Vertex, len(sg.Vertices))
	for _, v := range sg.Vertices {
		byID[v.ID] = v
	}
	top := ranked[0].ID
	if _, ok := byID[top]; !ok {
		return nil, xerrors.Errorf("reduce around %d: %w", top, ErrUnknownVertex)
	}

	adj := undirected(sg.Edges)
	var (
		visited = graph.NewIDSet(top)
		queue   = []int64{top}
		order   []graph.Vertex
	)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, byID[id])
		for _, next := range adj[id] {
			if visited.Has(next) {
				continue
			}
			visited.Add(next)
			queue = append(queue, next)
		}
	}

	edges := table.SemiJoin(
		table.SemiJoin(table.New(sg.Edges...), func(e graph.Edge) int64 { return e.Src }, visited),
		func(e graph.Edge) int64 { return e.Dst }, visited,
	)
	return &extract.Subgraph{Vertices: order, Edges: edges.Rows()}, nil
}

// undirected builds sorted, de-duplicated neighbour lists ignoring edge
// direction. Self-loops do not connect anything and are skipped.
func undirected(edges []graph.Edge) map[int64][]int64 {
	sets := make(map[int64]graph.IDSet)
	link := func(a, b int64) {
		if sets[a] == nil {
			sets[a] = graph.NewIDSet()
		}
		sets[a].Add(b)
	}
	for _, e := range edges {
		if e.Src == e.Dst {
			continue
		}
		link(e.Src, e.Dst)
		link(e.Dst, e.Src)
	}

	adj := make(map[int64][]int64, len(sets))
	for id, set := range sets {
		adj[id] = set.Sorted()
	}
	return adj
}
