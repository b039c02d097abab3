package bsp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Ahmed-Sermani/wikicast/bsp"
	"github.com/Ahmed-Sermani/wikicast/bsp/aggregators"
	"github.com/Ahmed-Sermani/wikicast/bsp/message"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type GraphTestSuite struct{}

func (s *GraphTestSuite) TestMessageExchange(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[int, any]{
		ComputeFn: func(g *bsp.Graph[int, any], v *bsp.Vertex[int, any], msgIt message.Iterator) error {
			v.Freeze()
			if g.Superstep() == 0 {
				// 10 and 20 swap greetings.
				return g.SendMessage(30-v.ID(), &intMsg{value: 42})
			}

			for msgIt.Next() {
				v.SetValue(msgIt.Message().(*intMsg).value)
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	g.AddVertex(10, 0)
	g.AddVertex(20, 0)

	err = execFixedSteps(g, 2)
	c.Assert(err, gc.IsNil)

	for id, v := range g.Vertices() {
		c.Assert(v.Value(), gc.Equals, 42, gc.Commentf("vertex %v", id))
	}
}

func (s *GraphTestSuite) TestMessageBroadcasting(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[int, any]{
		ComputeFn: func(g *bsp.Graph[int, any], v *bsp.Vertex[int, any], msgIt message.Iterator) error {
			if err := g.BroadcastToNeighbors(v, &intMsg{value: 42}); err != nil {
				return err
			}
			for msgIt.Next() {
				v.SetValue(msgIt.Message().(*intMsg).value)
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	g.AddVertex(0, 42)
	g.AddVertex(1, 0)
	g.AddVertex(2, 0)
	g.AddVertex(3, 0)
	c.Assert(g.AddEdge(0, 1, nil), gc.IsNil)
	c.Assert(g.AddEdge(0, 2, nil), gc.IsNil)
	c.Assert(g.AddEdge(0, 3, nil), gc.IsNil)

	err = execFixedSteps(g, 2)
	c.Assert(err, gc.IsNil)

	for id, v := range g.Vertices() {
		c.Assert(v.Value(), gc.Equals, 42, gc.Commentf("vertex %v", id))
	}
}

func (s *GraphTestSuite) TestAddEdgeFromUnknownVertex(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeFn: func(*bsp.Graph[any, any], *bsp.Vertex[any, any], message.Iterator) error { return nil },
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	err = g.AddEdge(7, 8, nil)
	c.Assert(errors.Is(err, bsp.ErrUnknownEdgeSource), gc.Equals, true)
}

func (s *GraphTestSuite) TestSendToUnknownVertex(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeFn: func(g *bsp.Graph[any, any], v *bsp.Vertex[any, any], _ message.Iterator) error {
			return g.SendMessage(404, &intMsg{})
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	g.AddVertex(1, nil)
	err = execFixedSteps(g, 1)
	c.Assert(errors.Is(err, bsp.ErrInvalidMessageDestination), gc.Equals, true)
}

func (s *GraphTestSuite) TestAggregator(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeWorkers: 4,
		ComputeFn: func(g *bsp.Graph[any, any], v *bsp.Vertex[any, any], msgIt message.Iterator) error {
			g.Aggregator("counter").Aggregate(1)
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	offset := 5
	g.RegisterAggregator("counter", new(aggregators.IntAggregator))
	g.Aggregator("counter").Aggregate(offset)

	numVerts := 1000
	for i := 0; i < numVerts; i++ {
		g.AddVertex(int64(i), nil)
	}

	err = execFixedSteps(g, 1)
	c.Assert(err, gc.IsNil)

	aggrMap := g.Aggregators()
	c.Assert(aggrMap["counter"].Get(), gc.Equals, numVerts+offset)
}

func (s *GraphTestSuite) TestHandleComputeFuncError(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeWorkers: 4,
		ComputeFn: func(g *bsp.Graph[any, any], v *bsp.Vertex[any, any], msgIt message.Iterator) error {
			if v.ID() == 50 {
				return errors.New("something went wrong")
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	numVerts := 1000
	for i := 0; i < numVerts; i++ {
		g.AddVertex(int64(i), nil)
	}

	err = execFixedSteps(g, 1)
	c.Assert(err, gc.ErrorMatches, `error while running compute function for vertex 50: something went wrong`)
}

func (s *GraphTestSuite) TestMissingComputeFunc(c *gc.C) {
	_, err := bsp.NewGraph(bsp.GraphConfig[any, any]{})
	c.Assert(err, gc.ErrorMatches, `(?s)graph config validation failed:.*compute function not specified.*`)
}

func (s *GraphTestSuite) TestRunStopsOnCancelledContext(c *gc.C) {
	steps := 0
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeFn: func(*bsp.Graph[any, any], *bsp.Vertex[any, any], message.Iterator) error { return nil },
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()
	g.AddVertex(1, nil)

	ctx, cancel := context.WithCancel(context.TODO())
	ex := bsp.NewExecutor(g, bsp.ExecutorHooks[any, any]{
		PostStep: func(context.Context, *bsp.Graph[any, any], int) error {
			steps++
			if steps == 3 {
				cancel()
			}
			return nil
		},
	})
	err = ex.RunToCompletion(ctx)
	c.Assert(errors.Is(err, context.Canceled), gc.Equals, true)
	c.Assert(steps, gc.Equals, 3)
}

func (s *GraphTestSuite) TestResetDropsVertices(c *gc.C) {
	g, err := bsp.NewGraph(bsp.GraphConfig[any, any]{
		ComputeFn: func(*bsp.Graph[any, any], *bsp.Vertex[any, any], message.Iterator) error { return nil },
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(g.Close(), gc.IsNil) }()

	g.AddVertex(1, nil)
	g.RegisterAggregator("x", new(aggregators.IntAggregator))
	c.Assert(g.Reset(), gc.IsNil)
	c.Assert(g.Vertices(), gc.HasLen, 0)
	c.Assert(g.Aggregator("x"), gc.IsNil)
	c.Assert(g.Superstep(), gc.Equals, 0)
}

type intMsg struct {
	value int
}

func (m intMsg) Type() string { return "intMsg" }

func execFixedSteps[VT any](g *bsp.Graph[VT, any], numSteps int) error {
	exec := bsp.NewExecutor(g, bsp.ExecutorHooks[VT, any]{})
	return exec.RunSteps(context.TODO(), numSteps)
}
