package ranker

import (
	"math"

	"github.com/Ahmed-Sermani/wikicast/bsp"
	"github.com/Ahmed-Sermani/wikicast/bsp/message"
)

// IncomingScoreMessage is used for distributing PageRank scores to neighbors.
type IncomingScoreMessage struct {
	Score float64
}

func (pr IncomingScoreMessage) Type() string { return "score" }

// makeComputeFunc returns a ComputeFunc that executes the PageRank algorithm
// using the provided dampingFactor value.
func makeComputeFunc(dampingFactor float64) bsp.ComputeFunc[float64, any] {
	return func(g *bsp.Graph[float64, any], v *bsp.Vertex[float64, any], msgIt message.Iterator) error {
		superstep := g.Superstep()
		pageCountAgg := g.Aggregator(pageCountAccName)

		// Superstep 0 only counts the vertices of the graph.
		if superstep == 0 {
			pageCountAgg.Aggregate(1)
			return nil
		}

		var (
			pageCount = float64(pageCountAgg.Get().(int))
			newScore  float64
		)
		switch superstep {
		case 1:
			// Scores start evenly distributed and sum up to 1.
			newScore = 1.0 / pageCount
		default:
			newScore = (1.0 - dampingFactor) / pageCount
			for msgIt.Next() {
				newScore += dampingFactor * msgIt.Message().(IncomingScoreMessage).Score
			}

			// Dead-ends from the previous step link to every vertex.
			resAggr := g.Aggregator(residualInputAccName(superstep))
			newScore += dampingFactor * resAggr.Get().(float64)
		}

		g.Aggregator(sadAccName).Aggregate(math.Abs(v.Value() - newScore))
		v.SetValue(newScore)

		// A dead-end can't message every vertex so it parks its share in
		// the residual aggregator which is read back during the next step.
		numOutLinks := float64(len(v.Edges()))
		if numOutLinks == 0.0 {
			g.Aggregator(residualOutputAccName(superstep)).Aggregate(newScore / pageCount)
			return nil
		}

		return g.BroadcastToNeighbors(v, IncomingScoreMessage{newScore / numOutLinks})
	}
}

const (
	pageCountAccName = "page_count"
	sadAccName       = "SAD"
)

// residualOutputAccName returns the name of the aggregator where the
// residual PageRank scores for the specified superstep are to be written to.
func residualOutputAccName(superstep int) string {
	if superstep%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}

// residualInputAccName returns the name of the aggregator where the
// residual PageRank scores for the specified superstep are to be read from.
func residualInputAccName(superstep int) string {
	if (superstep+1)%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}
