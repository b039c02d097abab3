package graphtest

import (
	"context"
	"sort"

	"github.com/Ahmed-Sermani/wikicast/graph"
	gc "gopkg.in/check.v1"
)

// Store is implemented by link graph stores that can be both loaded and
// scanned.
type Store interface {
	graph.Source
	graph.Writer
}

// SuiteBase defines a re-usable set of link graph store tests that can be
// executed against any type that implements Store.
type SuiteBase struct {
	g Store
}

// SetGraph configures the test-suite to run all tests against g.
func (s *SuiteBase) SetGraph(g Store) {
	s.g = g
}

func (s *SuiteBase) TestPageRoundTrip(c *gc.C) {
	ctx := context.TODO()
	pages := []*graph.Vertex{
		{ID: 1, Title: "Anarchism", Attrs: map[string]string{"ns": "0"}},
		{ID: 2, Title: "Autism"},
	}
	c.Assert(s.g.InsertPages(ctx, pages), gc.IsNil)

	it, err := s.g.Pages(ctx, graph.PageFilter{})
	c.Assert(err, gc.IsNil)
	got, err := graph.CollectVertices(it)
	c.Assert(err, gc.IsNil)
	sortVertices(got)

	c.Assert(got, gc.HasLen, 2)
	c.Assert(got[0].ID, gc.Equals, int64(1))
	c.Assert(got[0].Title, gc.Equals, "Anarchism")
	c.Assert(got[0].Attrs["ns"], gc.Equals, "0")
	c.Assert(got[1].Title, gc.Equals, "Autism")
	c.Assert(len(got[1].Attrs), gc.Equals, 0)
}

func (s *SuiteBase) TestPageFilter(c *gc.C) {
	ctx := context.TODO()
	c.Assert(s.g.InsertPages(ctx, []*graph.Vertex{
		{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"},
	}), gc.IsNil)

	it, err := s.g.Pages(ctx, graph.PageFilter{IDs: graph.NewIDSet(3, 1, 42)})
	c.Assert(err, gc.IsNil)
	got, err := graph.CollectVertices(it)
	c.Assert(err, gc.IsNil)
	sortVertices(got)

	c.Assert(got, gc.HasLen, 2)
	c.Assert(got[0].ID, gc.Equals, int64(1))
	c.Assert(got[1].ID, gc.Equals, int64(3))

	it, err = s.g.Pages(ctx, graph.PageFilter{IDs: graph.NewIDSet()})
	c.Assert(err, gc.IsNil)
	got, err = graph.CollectVertices(it)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.HasLen, 0)
}

func (s *SuiteBase) TestLinkFilters(c *gc.C) {
	ctx := context.TODO()
	c.Assert(s.g.InsertLinks(ctx, []*graph.Edge{
		{Src: 1, Dst: 2}, {Src: 2, Dst: 3}, {Src: 3, Dst: 4}, {Src: 4, Dst: 1},
	}), gc.IsNil)

	specs := []struct {
		descr  string
		filter graph.LinkFilter
		exp    []graph.Edge
	}{
		{
			descr:  "no restriction",
			filter: graph.LinkFilter{},
			exp:    []graph.Edge{{Src: 1, Dst: 2}, {Src: 2, Dst: 3}, {Src: 3, Dst: 4}, {Src: 4, Dst: 1}},
		},
		{
			descr:  "source only",
			filter: graph.LinkFilter{Src: graph.NewIDSet(2, 3)},
			exp:    []graph.Edge{{Src: 2, Dst: 3}, {Src: 3, Dst: 4}},
		},
		{
			descr:  "both endpoints",
			filter: graph.LinkFilter{Src: graph.NewIDSet(1, 2, 3), Dst: graph.NewIDSet(1, 2, 3)},
			exp:    []graph.Edge{{Src: 1, Dst: 2}, {Src: 2, Dst: 3}},
		},
		{
			descr:  "either endpoint",
			filter: graph.LinkFilter{Src: graph.NewIDSet(1), Dst: graph.NewIDSet(4), MatchEither: true},
			exp:    []graph.Edge{{Src: 1, Dst: 2}, {Src: 3, Dst: 4}},
		},
		{
			descr:  "either endpoint with a single restriction",
			filter: graph.LinkFilter{Dst: graph.NewIDSet(1), MatchEither: true},
			exp:    []graph.Edge{{Src: 4, Dst: 1}},
		},
		{
			descr:  "empty set selects nothing",
			filter: graph.LinkFilter{Src: graph.NewIDSet()},
			exp:    nil,
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		it, err := s.g.Links(ctx, spec.filter)
		c.Assert(err, gc.IsNil)
		got, err := graph.CollectEdges(it)
		c.Assert(err, gc.IsNil)
		c.Assert(flattenEdges(got), gc.DeepEquals, spec.exp)
	}
}

func (s *SuiteBase) TestMultiEdgesArePreserved(c *gc.C) {
	ctx := context.TODO()
	c.Assert(s.g.InsertLinks(ctx, []*graph.Edge{
		{Src: 1, Dst: 2}, {Src: 1, Dst: 2}, {Src: 2, Dst: 2},
	}), gc.IsNil)

	it, err := s.g.Links(ctx, graph.LinkFilter{})
	c.Assert(err, gc.IsNil)
	got, err := graph.CollectEdges(it)
	c.Assert(err, gc.IsNil)
	c.Assert(flattenEdges(got), gc.DeepEquals, []graph.Edge{{Src: 1, Dst: 2}, {Src: 1, Dst: 2}, {Src: 2, Dst: 2}})
}

func (s *SuiteBase) TestViewFilter(c *gc.C) {
	ctx := context.TODO()
	c.Assert(s.g.InsertViews(ctx, []*graph.View{
		{PageID: 1, Date: "2020-01-01", Count: 10},
		{PageID: 2, Date: "2020-01-01", Count: 3},
		{PageID: 1, Date: "2020-01-02", Count: 7},
		{PageID: 1, Date: "", Count: 1},
	}), gc.IsNil)

	it, err := s.g.Views(ctx, graph.ViewFilter{PageIDs: graph.NewIDSet(1)})
	c.Assert(err, gc.IsNil)
	got, err := graph.CollectViews(it)
	c.Assert(err, gc.IsNil)
	sort.Slice(got, func(i, j int) bool { return got[i].Date < got[j].Date })

	c.Assert(got, gc.HasLen, 3)
	c.Assert(*got[0], gc.Equals, graph.View{PageID: 1, Date: "", Count: 1})
	c.Assert(*got[1], gc.Equals, graph.View{PageID: 1, Date: "2020-01-01", Count: 10})
	c.Assert(*got[2], gc.Equals, graph.View{PageID: 1, Date: "2020-01-02", Count: 7})

	it, err = s.g.Views(ctx, graph.ViewFilter{})
	c.Assert(err, gc.IsNil)
	got, err = graph.CollectViews(it)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.HasLen, 4)
}

func sortVertices(list []*graph.Vertex) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// flattenEdges sorts edges by (src, dst) since SQL backed stores make no
// ordering promises.
func flattenEdges(list []*graph.Edge) []graph.Edge {
	if len(list) == 0 {
		return nil
	}
	out := make([]graph.Edge, len(list))
	for i, e := range list {
		out[i] = *e
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}
