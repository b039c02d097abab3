package extract

import (
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/table"
)

// layers holds one side of the walks around the seed. nodes[d] are the
// vertices d hops away from the seed and links[d] maps each vertex of
// nodes[d-1] to its neighbours in nodes[d].
type layers struct {
	nodes []graph.IDSet
	links []map[int64][]int64
}

func newLayers(seed int64, depth int) *layers {
	l := &layers{
		nodes: make([]graph.IDSet, depth+1),
		links: make([]map[int64][]int64, depth+1),
	}
	l.nodes[0] = graph.NewIDSet(seed)
	for d := 1; d <= depth; d++ {
		l.nodes[d] = graph.NewIDSet()
		l.links[d] = make(map[int64][]int64)
	}
	return l
}

func (l *layers) add(d int, inner, outer int64) {
	l.nodes[d].Add(outer)
	l.links[d][inner] = append(l.links[d][inner], outer)
}

// prune drops, from the outermost layer inward, the vertices that have no
// neighbour in the next layer. It reports whether the seed still reaches the
// outermost layer.
func (l *layers) prune() bool {
	for d := len(l.nodes) - 2; d >= 0; d-- {
		kept := graph.NewIDSet()
		for id := range l.nodes[d] {
			for _, next := range l.links[d+1][id] {
				if l.nodes[d+1].Has(next) {
					kept.Add(id)
					break
				}
			}
		}
		l.nodes[d] = kept
	}
	return l.nodes[0].Len() != 0
}

func (l *layers) tables() []table.Table[int64] {
	out := make([]table.Table[int64], len(l.nodes))
	for d, ids := range l.nodes {
		out[d] = table.New(ids.Sorted()...)
	}
	return out
}
