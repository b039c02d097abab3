package extract

import (
	"context"
	"math/rand"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/table"
	"golang.org/x/xerrors"
)

// DefaultSampleRatio is the fraction of pages kept by SampleVertices when no
// ratio is configured.
const DefaultSampleRatio = 0.05

// ErrInvalidSampleRatio is returned for a sample ratio outside (0, 1].
var ErrInvalidSampleRatio = xerrors.New("sample ratio must be in the (0, 1] range")

// ChooseSeed picks a page uniformly at random with a single-pass reservoir
// sample over the page relation.
func ChooseSeed(ctx context.Context, src graph.Source, rng *rand.Rand) (*graph.Vertex, error) {
	it, err := src.Pages(ctx, graph.PageFilter{})
	if err != nil {
		return nil, xerrors.Errorf("choose random seed: %w", err)
	}
	defer func() { _ = it.Close() }()

	var (
		chosen *graph.Vertex
		seen   int
	)
	for it.Next() {
		seen++
		if rng.Intn(seen) == 0 {
			chosen = it.Vertex()
		}
	}
	if err = it.Error(); err != nil {
		return nil, xerrors.Errorf("choose random seed: %w", err)
	}
	if chosen == nil {
		return nil, xerrors.Errorf("choose random seed: %w", graph.ErrNotFound)
	}
	return chosen, nil
}

// SampleVertices keeps each page independently with probability ratio and
// returns the subgraph induced by the sample. The sample is deterministic for
// a given rng seed and page scan order.
func SampleVertices(ctx context.Context, src graph.Source, ratio float64, rng *rand.Rand) (*Subgraph, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, xerrors.Errorf("sample with ratio %v: %w", ratio, ErrInvalidSampleRatio)
	}

	it, err := src.Pages(ctx, graph.PageFilter{})
	if err != nil {
		return nil, xerrors.Errorf("sample pages: %w", err)
	}
	keep := table.Bernoulli[int64](ratio, rng)
	var ids []int64
	for it.Next() {
		if id := it.Vertex().ID; keep(id) {
			ids = append(ids, id)
		}
	}
	if err = it.Error(); err != nil {
		_ = it.Close()
		return nil, xerrors.Errorf("sample pages: %w", err)
	}
	if err = it.Close(); err != nil {
		return nil, xerrors.Errorf("sample pages: %w", err)
	}

	sorted := table.Distinct(table.New(ids...), func(id int64) int64 { return id }).
		OrderBy(func(a, b int64) bool { return a < b })
	return induce(ctx, src, sorted.Rows())
}
