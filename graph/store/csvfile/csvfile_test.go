package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ahmed-Sermani/wikicast/graph"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CSVSourceTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type CSVSourceTestSuite struct {
	dir string
}

func (s *CSVSourceTestSuite) SetUpTest(c *gc.C) {
	s.dir = c.MkDir()
}

func (s *CSVSourceTestSuite) TestReadRelations(c *gc.C) {
	pages := s.writeFile(c, "pages.csv", "id,title,ns\n1,Anarchism,0\n2,Autism,0\n3,Albedo,1\n")
	linksDir := filepath.Join(s.dir, "pagelinks")
	c.Assert(os.Mkdir(linksDir, 0o755), gc.IsNil)
	s.writeFile(c, "pagelinks/part-0001.csv", "from,dest\n1,2\n2,3\n")
	s.writeFile(c, "pagelinks/part-0000.csv", "from,dest\n3,1\n")
	views := s.writeFile(c, "views.csv", "page_id,date,count\n1,2020-01-01,5\n1,,3\n2,2020-01-01,\n3,2020-01-02,9\n")

	src, err := Open(pages, linksDir, views)
	c.Assert(err, gc.IsNil)
	ctx := context.TODO()

	pit, err := src.Pages(ctx, graph.PageFilter{IDs: graph.NewIDSet(1, 3)})
	c.Assert(err, gc.IsNil)
	vertices, err := graph.CollectVertices(pit)
	c.Assert(err, gc.IsNil)
	c.Assert(vertices, gc.DeepEquals, []*graph.Vertex{
		{ID: 1, Title: "Anarchism", Attrs: map[string]string{"ns": "0"}},
		{ID: 3, Title: "Albedo", Attrs: map[string]string{"ns": "1"}},
	})

	lit, err := src.Links(ctx, graph.LinkFilter{})
	c.Assert(err, gc.IsNil)
	edges, err := graph.CollectEdges(lit)
	c.Assert(err, gc.IsNil)
	// Files of a directory are read in lexical order.
	c.Assert(edges, gc.DeepEquals, []*graph.Edge{{Src: 3, Dst: 1}, {Src: 1, Dst: 2}, {Src: 2, Dst: 3}})

	vit, err := src.Views(ctx, graph.ViewFilter{PageIDs: graph.NewIDSet(1, 2)})
	c.Assert(err, gc.IsNil)
	got, err := graph.CollectViews(vit)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, []*graph.View{
		{PageID: 1, Date: "2020-01-01", Count: 5},
		{PageID: 1, Date: "", Count: 3},
	})
}

func (s *CSVSourceTestSuite) TestAlternativeLinkHeader(c *gc.C) {
	path := s.writeFile(c, "links.csv", "src,dst\n7,8\n8,7\n")
	src := &Source{links: []string{path}}

	it, err := src.Links(context.TODO(), graph.LinkFilter{Src: graph.NewIDSet(8)})
	c.Assert(err, gc.IsNil)
	edges, err := graph.CollectEdges(it)
	c.Assert(err, gc.IsNil)
	c.Assert(edges, gc.DeepEquals, []*graph.Edge{{Src: 8, Dst: 7}})
}

func (s *CSVSourceTestSuite) TestMissingColumn(c *gc.C) {
	path := s.writeFile(c, "links.csv", "a,b\n1,2\n")
	src := &Source{links: []string{path}}

	it, err := src.Links(context.TODO(), graph.LinkFilter{})
	c.Assert(err, gc.IsNil)
	_, err = graph.CollectEdges(it)
	c.Assert(err, gc.ErrorMatches, `(?s).*missing required column.*`)
}

func (s *CSVSourceTestSuite) TestOpenFailsOnMissingPath(c *gc.C) {
	pages := s.writeFile(c, "pages.csv", "id,title\n")
	_, err := Open(pages, filepath.Join(s.dir, "nope"), pages)
	c.Assert(err, gc.ErrorMatches, `pagelinks: .*no such file or directory`)

	empty := filepath.Join(s.dir, "empty")
	c.Assert(os.Mkdir(empty, 0o755), gc.IsNil)
	_, err = Open(pages, pages, empty)
	c.Assert(err, gc.ErrorMatches, `pageviews: no csv files found in .*`)
}

func (s *CSVSourceTestSuite) writeFile(c *gc.C, name, content string) string {
	path := filepath.Join(s.dir, name)
	c.Assert(os.WriteFile(path, []byte(content), 0o644), gc.IsNil)
	return path
}
