/*
Package ranker implements the PageRank https://en.wikipedia.org/wiki/PageRank
centrality measure over an extracted subgraph.

Under the random surfer model a surfer lands on a page and then either follows
one of its outgoing links, with a probability equal to the damping factor, or
teleports to a random page of the graph. A PageRank score is the probability
of finding the surfer on a page, so every score lies in [0, 1] and the scores
of a graph sum up to 1. Pages without outgoing links are treated as linking to
every page, and self-links are ignored.
*/
package ranker

import (
	"context"
	"sync"

	"github.com/Ahmed-Sermani/wikicast/bsp"
	"github.com/Ahmed-Sermani/wikicast/bsp/aggregators"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

// Scorer assigns a PageRank score to every vertex of a subgraph. Edges with
// an endpoint outside ids are ignored.
type Scorer interface {
	Score(ctx context.Context, ids []int64, edges []graph.Edge) (map[int64]float64, error)
}

var (
	_ Scorer = (*Ranker)(nil)
	_ Scorer = (*InMemory)(nil)
)

// Ranker executes the iterative version of the PageRank algorithm on the bsp
// engine until the desired level of convergence is reached.
type Ranker struct {
	// mu serializes Score calls since they share the bsp graph.
	mu  sync.Mutex
	g   *bsp.Graph[float64, any]
	cfg Config

	executorFactory bsp.ExecutorFactory[float64, any]
}

// NewRanker returns a new Ranker instance using the provided config
// options.
func NewRanker(cfg Config) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank ranker config validation failed: %w", err)
	}

	g, err := bsp.NewGraph(bsp.GraphConfig[float64, any]{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeComputeFunc(cfg.DampingFactor),
	})
	if err != nil {
		return nil, err
	}

	return &Ranker{
		cfg:             cfg,
		g:               g,
		executorFactory: bsp.NewExecutor[float64, any],
	}, nil
}

// Close releases any resources allocated by this PageRank ranker instance.
func (c *Ranker) Close() error {
	return c.g.Close()
}

// SetExecutorFactory configures the ranker to use the a custom executor
// factory when the Executor method is invoked.
func (c *Ranker) SetExecutorFactory(factory bsp.ExecutorFactory[float64, any]) {
	c.executorFactory = factory
}

// Score loads the subgraph into the bsp graph, runs PageRank to convergence
// and returns the score of each vertex.
func (c *Ranker) Score(ctx context.Context, ids []int64, edges []graph.Edge) (map[int64]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.g.Reset(); err != nil {
		return nil, xerrors.Errorf("reset ranker graph: %w", err)
	}
	if len(ids) == 0 {
		return map[int64]float64{}, nil
	}

	for _, id := range ids {
		c.AddVertex(id)
	}
	for _, e := range edges {
		if !c.hasVertex(e.Dst) || !c.hasVertex(e.Src) {
			continue
		}
		if err := c.AddEdge(e.Src, e.Dst); err != nil {
			return nil, err
		}
	}

	if err := c.Executor().RunToCompletion(ctx); err != nil {
		return nil, xerrors.Errorf("run PageRank: %w", err)
	}

	scores := make(map[int64]float64, len(ids))
	err := c.Scores(func(id int64, score float64) error {
		scores[id] = score
		return nil
	})
	return scores, err
}

// AddVertex inserts a new vertex to the graph with the given id.
func (c *Ranker) AddVertex(id int64) {
	c.g.AddVertex(id, 0.0)
}

// AddEdge inserts a directed edge from src to dst. If both src and dst refer
// to the same vertex then this is a no-op.
func (c *Ranker) AddEdge(src, dst int64) error {
	if src == dst {
		return nil
	}
	return c.g.AddEdge(src, dst, nil)
}

func (c *Ranker) hasVertex(id int64) bool {
	_, ok := c.g.Vertices()[id]
	return ok
}

// Graph returns the underlying bsp.Graph instance.
func (c *Ranker) Graph() *bsp.Graph[float64, any] {
	return c.g
}

// Executor creates and return a bsp.Executor for running the PageRank
// algorithm once the graph layout has been properly set up.
func (c *Ranker) Executor() *bsp.Executor[float64, any] {
	c.registerAggregators()
	cb := bsp.ExecutorHooks[float64, any]{
		PreStep: func(_ context.Context, g *bsp.Graph[float64, any]) error {
			g.Aggregator(sadAccName).Set(0.0)
			g.Aggregator(residualOutputAccName(g.Superstep())).Set(0.0)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *bsp.Graph[float64, any], _ int) (bool, error) {
			// Supersteps 0 and 1 initialize the scores.
			sad := g.Aggregator(sadAccName).Get().(float64)
			return !(g.Superstep() > 1 && sad < c.cfg.MinSADForConvergence), nil
		},
	}

	return c.executorFactory(c.g, cb)
}

func (c *Ranker) registerAggregators() {
	c.g.RegisterAggregator(pageCountAccName, new(aggregators.IntAggregator))
	c.g.RegisterAggregator("residual_0", new(aggregators.Float64Aggregator))
	c.g.RegisterAggregator("residual_1", new(aggregators.Float64Aggregator))
	c.g.RegisterAggregator(sadAccName, new(aggregators.Float64Aggregator))
}

// Scores invokes the provided visitor function for each vertex in the graph.
func (c *Ranker) Scores(visitFn func(id int64, score float64) error) error {
	for id, v := range c.g.Vertices() {
		if err := visitFn(id, v.Value()); err != nil {
			return err
		}
	}
	return nil
}
