// Package sampler runs sampling jobs over a link graph. Each run travels
// through a pipeline with the following stages:
//
//   - Resolve the seed page of the run, or sample random pages in random mode.
//   - Extract the k-hop neighborhood around the seed.
//   - Rank the subgraph with PageRank.
//   - Reduce a random sample to the component of its top ranked vertex.
//   - Assemble the vertex, edge and time-series tables.
//   - Write the artifacts and the manifest, and the graph statistics.
package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/Ahmed-Sermani/wikicast/pipeline/runners"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Sampler executes sampling runs.
type Sampler struct {
	cfg      Config
	ranker   ranker.Scorer
	pipeline *pipeline.Pipeline
}

// NewSampler validates cfg and assembles the sampling pipeline.
func NewSampler(cfg Config) (*Sampler, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("sampler config validation failed: %w", err)
	}

	var (
		scorer ranker.Scorer
		err    error
	)
	switch cfg.Engine {
	case EngineMemory:
		scorer, err = ranker.NewInMemory(cfg.Ranker)
	default:
		scorer, err = ranker.NewRanker(cfg.Ranker)
	}
	if err != nil {
		return nil, err
	}

	s := &Sampler{cfg: cfg, ranker: scorer}
	s.pipeline = s.assemblePipeline()
	return s, nil
}

// Close releases the resources of the ranking engine.
func (s *Sampler) Close() error {
	if c, ok := s.ranker.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *Sampler) assemblePipeline() *pipeline.Pipeline {
	cfg := s.cfg
	return pipeline.New(
		runners.FIFO(newSeedResolver(cfg.Source, cfg.Mode, cfg.SampleRatio, cfg.SampleSeed, cfg.Logger)),
		runners.FixedWorkerPool(newExtractor(cfg.Source, cfg.KHops, cfg.Logger), cfg.ExtractWorkers),
		runners.FIFO(newScorer(s.ranker, cfg.Logger)),
		runners.FIFO(newReducer(cfg.Mode, cfg.Logger)),
		runners.DynamicWorkerPool(newAssembler(cfg.Source, vertexOrderFor(cfg.Mode)), cfg.AssembleWorkers),
		runners.Broadcast(
			newArtifactWriter(cfg.Mode, s.manifestParams(), cfg.Clock, cfg.Logger),
			newStatsWriter(cfg.Plotter),
		),
	)
}

func (s *Sampler) manifestParams() artifact.Params {
	cfg := s.cfg
	params := artifact.Params{
		DampingFactor: cfg.Ranker.DampingFactor,
		Tolerance:     cfg.Ranker.MinSADForConvergence,
		Engine:        string(cfg.Engine),
		VertexOrder:   vertexOrderFor(cfg.Mode).String(),
	}
	if params.DampingFactor == 0 {
		params.DampingFactor = ranker.DefaultDampingFactor
	}
	if params.Tolerance == 0 {
		params.Tolerance = ranker.DefaultMinSADForConvergence
	}
	if cfg.Mode == ModeRandom {
		params.SampleRatio = cfg.SampleRatio
		params.SampleSeed = cfg.SampleSeed
	} else {
		params.KHops = cfg.KHops
	}
	return params
}

// Sample executes one run per seed. Without seeds it executes runs runs,
// each starting from a random page or, in random mode, from a random vertex
// sample. A single run writes directly to the artifact store; several runs
// each write below a sub-location named after their run id.
//
// Calls to Sample block until all runs completed or one of them failed.
func (s *Sampler) Sample(ctx context.Context, seeds []int64, runs int) ([]Result, error) {
	requests, err := s.requests(seeds, runs)
	if err != nil {
		return nil, err
	}

	source := &runSource{
		requests:   requests,
		root:       s.cfg.Artifacts,
		clk:        s.cfg.Clock,
		namespaced: len(requests) > 1,
	}
	sink := &resultSink{mode: s.cfg.Mode, clk: s.cfg.Clock}

	s.cfg.Logger.WithFields(logrus.Fields{
		"mode": s.cfg.Mode,
		"runs": len(requests),
	}).Info("starting sampling runs")

	err = s.pipeline.Process(ctx, source, sink)
	results := sink.getResults()
	s.record(results, len(requests), err)
	return results, err
}

func (s *Sampler) requests(seeds []int64, runs int) ([]runRequest, error) {
	if len(seeds) != 0 {
		if s.cfg.Mode == ModeRandom {
			return nil, xerrors.Errorf("article seeds cannot be used in %s mode", ModeRandom)
		}
		requests := make([]runRequest, len(seeds))
		for i, id := range seeds {
			requests[i] = runRequest{seedID: id, hasSeed: true}
		}
		return requests, nil
	}

	if runs <= 0 {
		return nil, xerrors.Errorf("number of runs must be at least 1, got %d", runs)
	}
	return make([]runRequest, runs), nil
}

func (s *Sampler) record(results []Result, requested int, err error) {
	m := s.cfg.Metrics
	if m == nil {
		return
	}
	mode := string(s.cfg.Mode)
	for _, r := range results {
		m.ObserveRun(mode, r.Vertices, r.Edges, r.TimeSeriesRows, r.Duration)
	}
	if err != nil {
		for i := len(results); i < requested; i++ {
			m.RunFailed(mode)
		}
	}
}

