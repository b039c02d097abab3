package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(MetricsTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type MetricsTestSuite struct{}

func (s *MetricsTestSuite) TestObserveRun(c *gc.C) {
	m := New()
	m.ObserveRun("neighborhood", 12, 30, 10, 2*time.Second)
	m.ObserveRun("neighborhood", 3, 2, 1, time.Second)
	m.RunFailed("random")

	c.Assert(testutil.ToFloat64(m.RunsTotal.WithLabelValues("neighborhood", OutcomeSuccess)), gc.Equals, 2.0)
	c.Assert(testutil.ToFloat64(m.RunsTotal.WithLabelValues("random", OutcomeFailure)), gc.Equals, 1.0)
	c.Assert(testutil.CollectAndCount(m.SubgraphVertices), gc.Equals, 1)
}

func (s *MetricsTestSuite) TestRegistriesAreIndependent(c *gc.C) {
	a, b := New(), New()
	a.RunFailed("random")
	c.Assert(testutil.ToFloat64(b.RunsTotal.WithLabelValues("random", OutcomeFailure)), gc.Equals, 0.0)
}

func (s *MetricsTestSuite) TestWriteTextfile(c *gc.C) {
	m := New()
	m.ObserveRun("random", 5, 4, 5, 100*time.Millisecond)

	path := filepath.Join(c.MkDir(), "wikicast.prom")
	c.Assert(m.WriteTextfile(path), gc.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, gc.IsNil)
	out := string(data)
	c.Assert(strings.Contains(out, `wikicast_runs_total{mode="random",outcome="success"} 1`), gc.Equals, true, gc.Commentf(out))
	c.Assert(strings.Contains(out, "wikicast_subgraph_edges_count"), gc.Equals, true)
}
