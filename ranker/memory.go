package ranker

import (
	"context"
	"math"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

// InMemory computes PageRank by power iteration over an adjacency list. It
// follows the same dead-end treatment and stopping rule as Ranker so both
// produce the same scores up to the convergence threshold.
type InMemory struct {
	cfg Config
}

// NewInMemory returns an InMemory engine for cfg, filling in defaults.
func NewInMemory(cfg Config) (*InMemory, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("in-memory PageRank config validation failed: %w", err)
	}
	return &InMemory{cfg: cfg}, nil
}

// Score returns the PageRank of every id in ids over edges. The scores sum
// to one.
func (r *InMemory) Score(ctx context.Context, ids []int64, edges []graph.Edge) (map[int64]float64, error) {
	index := make(map[int64]int, len(ids))
	for _, id := range ids {
		if _, dup := index[id]; !dup {
			index[id] = len(index)
		}
	}
	n := len(index)
	if n == 0 {
		return map[int64]float64{}, nil
	}

	out := make([][]int, n)
	for _, e := range edges {
		src, okSrc := index[e.Src]
		dst, okDst := index[e.Dst]
		if !okSrc || !okDst || src == dst {
			continue
		}
		out[src] = append(out[src], dst)
	}

	var (
		alpha = r.cfg.DampingFactor
		N     = float64(n)
		cur   = make([]float64, n)
		next  = make([]float64, n)
	)
	for i := range cur {
		cur[i] = 1.0 / N
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var residual float64
		for i := range next {
			next[i] = (1.0 - alpha) / N
			if len(out[i]) == 0 {
				residual += cur[i] / N
			}
		}
		for src, dsts := range out {
			share := cur[src] / float64(len(dsts))
			for _, dst := range dsts {
				next[dst] += alpha * share
			}
		}

		var sad float64
		for i := range next {
			next[i] += alpha * residual
			sad += math.Abs(next[i] - cur[i])
		}
		cur, next = next, cur
		if sad < r.cfg.MinSADForConvergence {
			break
		}
	}

	scores := make(map[int64]float64, n)
	for id, i := range index {
		scores[id] = cur[i]
	}
	return scores, nil
}
