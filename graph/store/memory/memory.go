package memory

import (
	"context"
	"sync"

	"github.com/Ahmed-Sermani/wikicast/graph"
)

var (
	_ graph.Source = (*InMemoryGraph)(nil)
	_ graph.Writer = (*InMemoryGraph)(nil)
)

// InMemoryGraph keeps the page, link and view relations in memory. Scans
// return rows in insertion order.
type InMemoryGraph struct {
	mu sync.RWMutex

	pages     map[int64]*graph.Vertex
	pageOrder []int64
	links     []*graph.Edge
	views     []*graph.View
}

// NewInMemoryGraph creates a new empty in-memory link graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		pages: make(map[int64]*graph.Vertex),
	}
}

// InsertPages adds pages to the graph. Inserting an existing id replaces the
// stored page.
func (s *InMemoryGraph) InsertPages(_ context.Context, pages []*graph.Vertex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range pages {
		if _, exists := s.pages[p.ID]; !exists {
			s.pageOrder = append(s.pageOrder, p.ID)
		}
		s.pages[p.ID] = cloneVertex(p)
	}
	return nil
}

// InsertLinks appends links to the graph. Endpoints need not be known pages.
func (s *InMemoryGraph) InsertLinks(_ context.Context, links []*graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range links {
		eCopy := *l
		s.links = append(s.links, &eCopy)
	}
	return nil
}

// InsertViews appends view counts to the graph.
func (s *InMemoryGraph) InsertViews(_ context.Context, views []*graph.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range views {
		vCopy := *v
		s.views = append(s.views, &vCopy)
	}
	return nil
}

func (s *InMemoryGraph) Pages(_ context.Context, filter graph.PageFilter) (graph.VertexIterator, error) {
	s.mu.RLock()
	var list []*graph.Vertex
	for _, id := range s.pageOrder {
		if p := s.pages[id]; filter.Match(p) {
			list = append(list, p)
		}
	}
	s.mu.RUnlock()
	return &vertexIterator{s: s, vertices: list}, nil
}

func (s *InMemoryGraph) Links(_ context.Context, filter graph.LinkFilter) (graph.EdgeIterator, error) {
	s.mu.RLock()
	var list []*graph.Edge
	for _, l := range s.links {
		if filter.Match(l) {
			list = append(list, l)
		}
	}
	s.mu.RUnlock()
	return &edgeIterator{s: s, edges: list}, nil
}

func (s *InMemoryGraph) Views(_ context.Context, filter graph.ViewFilter) (graph.ViewIterator, error) {
	s.mu.RLock()
	var list []*graph.View
	for _, v := range s.views {
		if filter.Match(v) {
			list = append(list, v)
		}
	}
	s.mu.RUnlock()
	return &viewIterator{s: s, views: list}, nil
}

func cloneVertex(v *graph.Vertex) *graph.Vertex {
	vCopy := &graph.Vertex{ID: v.ID, Title: v.Title}
	if len(v.Attrs) != 0 {
		vCopy.Attrs = make(map[string]string, len(v.Attrs))
		for k, val := range v.Attrs {
			vCopy.Attrs[k] = val
		}
	}
	return vCopy
}
