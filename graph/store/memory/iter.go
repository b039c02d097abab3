package memory

import "github.com/Ahmed-Sermani/wikicast/graph"

type vertexIterator struct {
	s *InMemoryGraph

	vertices []*graph.Vertex
	curIdx   int
}

func (i *vertexIterator) Next() bool {
	if i.curIdx >= len(i.vertices) {
		return false
	}
	i.curIdx++
	return true
}

func (i *vertexIterator) Vertex() *graph.Vertex {
	// A concurrent InsertPages may replace the stored page, hand out a copy.
	i.s.mu.RLock()
	v := cloneVertex(i.vertices[i.curIdx-1])
	i.s.mu.RUnlock()
	return v
}

func (i *vertexIterator) Error() error { return nil }

func (i *vertexIterator) Close() error { return nil }

type edgeIterator struct {
	s *InMemoryGraph

	edges    []*graph.Edge
	curIndex int
}

func (i *edgeIterator) Next() bool {
	if i.curIndex >= len(i.edges) {
		return false
	}
	i.curIndex++
	return true
}

func (i *edgeIterator) Edge() *graph.Edge {
	i.s.mu.RLock()
	edge := new(graph.Edge)
	*edge = *i.edges[i.curIndex-1]
	i.s.mu.RUnlock()
	return edge
}

func (i *edgeIterator) Error() error { return nil }

func (i *edgeIterator) Close() error { return nil }

type viewIterator struct {
	s *InMemoryGraph

	views    []*graph.View
	curIndex int
}

func (i *viewIterator) Next() bool {
	if i.curIndex >= len(i.views) {
		return false
	}
	i.curIndex++
	return true
}

func (i *viewIterator) View() *graph.View {
	i.s.mu.RLock()
	view := new(graph.View)
	*view = *i.views[i.curIndex-1]
	i.s.mu.RUnlock()
	return view
}

func (i *viewIterator) Error() error { return nil }

func (i *viewIterator) Close() error { return nil }
