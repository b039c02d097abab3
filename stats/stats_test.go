package stats

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(StatsTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type StatsTestSuite struct{}

func (s *StatsTestSuite) TestTriangleWithTail(c *gc.C) {
	// Triangle 1-2-3 with a tail 3-4, a reciprocal link and a self-loop.
	sum := Compute([]graph.Edge{
		{Src: 1, Dst: 2}, {Src: 2, Dst: 1}, {Src: 2, Dst: 3}, {Src: 3, Dst: 1},
		{Src: 3, Dst: 4}, {Src: 4, Dst: 4},
	})

	c.Assert(sum.Nodes, gc.Equals, 4)
	c.Assert(sum.Edges, gc.Equals, 4)
	c.Assert(sum.AverageDegree, gc.Equals, 2.0)
	c.Assert(sum.DegreeHistogram, gc.DeepEquals, []int{0, 1, 2, 1})
	// Local clustering: 1 and 2 are 1, 3 is 1/3, 4 is 0.
	c.Assert(math.Abs(sum.Clustering-(1+1+1.0/3)/4) < 1e-12, gc.Equals, true)
	c.Assert(sum.Density, gc.Equals, 2*4.0/12)
}

func (s *StatsTestSuite) TestEmptyGraph(c *gc.C) {
	sum := Compute(nil)
	c.Assert(sum.Nodes, gc.Equals, 0)
	c.Assert(sum.Density, gc.Equals, 0.0)
	c.Assert(sum.DegreeHistogram, gc.HasLen, 0)
}

func (s *StatsTestSuite) TestSelfLoopOnly(c *gc.C) {
	sum := Compute([]graph.Edge{{Src: 7, Dst: 7}})
	c.Assert(sum.Nodes, gc.Equals, 1)
	c.Assert(sum.Edges, gc.Equals, 0)
	c.Assert(sum.DegreeHistogram, gc.DeepEquals, []int{1})
}

func (s *StatsTestSuite) TestWrite(c *gc.C) {
	root := c.MkDir()
	sum := Compute([]graph.Edge{{Src: 1, Dst: 2}})
	plotter := &recordingPlotter{}

	c.Assert(Write(context.TODO(), artifact.NewDir(root), sum, plotter), gc.IsNil)
	c.Assert(plotter.got, gc.Equals, sum)

	summary, err := os.ReadFile(filepath.Join(root, SummaryFile))
	c.Assert(err, gc.IsNil)
	c.Assert(string(summary), gc.Equals, strings.Join([]string{
		"Type: Graph",
		"Number of nodes: 2",
		"Number of edges: 1",
		"Average degree: 1.0000",
		"Clustering Coefficient: 0",
		"Density: 1",
		"",
	}, "\n"))

	hist, err := os.ReadFile(filepath.Join(root, DegreeHistogramFile))
	c.Assert(err, gc.IsNil)
	c.Assert(string(hist), gc.Equals, "degree,count\n0,0\n1,2\n")
}

func (s *StatsTestSuite) TestPlotterError(c *gc.C) {
	err := Write(context.TODO(), artifact.NewDir(c.MkDir()), Compute(nil), &recordingPlotter{err: xerrors.New("no display")})
	c.Assert(err, gc.ErrorMatches, "plot statistics: no display")
}

func (s *StatsTestSuite) TestReadEdges(c *gc.C) {
	edges, err := ReadEdges(strings.NewReader("src,dst\n1,2\n3,1\n"))
	c.Assert(err, gc.IsNil)
	c.Assert(edges, gc.DeepEquals, []graph.Edge{{Src: 1, Dst: 2}, {Src: 3, Dst: 1}})

	_, err = ReadEdges(strings.NewReader("from,to\n1,2\n"))
	c.Assert(err, gc.ErrorMatches, "edges header .* lacks src and dst columns")

	_, err = ReadEdges(strings.NewReader("src,dst\n1,x\n"))
	c.Assert(err, gc.ErrorMatches, `line 2: invalid dst: .*`)
}

type recordingPlotter struct {
	got *Summary
	err error
}

func (p *recordingPlotter) Plot(_ context.Context, _ artifact.Store, s *Summary) error {
	p.got = s
	return p.err
}
