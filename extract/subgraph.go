package extract

import (
	"sort"

	"github.com/Ahmed-Sermani/wikicast/graph"
)

// Subgraph is an induced subgraph: every edge has both endpoints among the
// vertices and vertex ids are unique.
type Subgraph struct {
	Vertices []graph.Vertex
	Edges    []graph.Edge
}

// Empty reports whether the subgraph has no vertices.
func (sg *Subgraph) Empty() bool { return sg == nil || len(sg.Vertices) == 0 }

// IDs returns the vertex ids in vertex order.
func (sg *Subgraph) IDs() []int64 {
	ids := make([]int64, len(sg.Vertices))
	for i, v := range sg.Vertices {
		ids[i] = v.ID
	}
	return ids
}

// IDSet returns the vertex ids as a set.
func (sg *Subgraph) IDSet() graph.IDSet {
	return graph.NewIDSet(sg.IDs()...)
}

func sortEdges(edges []graph.Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Src != edges[j].Src {
			return edges[i].Src < edges[j].Src
		}
		return edges[i].Dst < edges[j].Dst
	})
}
