package sampler

import (
	"context"
	"math/rand"
	"sync"

	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*seedResolver)(nil)

// seedResolver decides where a run starts: the requested seed page, a random
// page, or, in random mode, a Bernoulli sample of all pages.
type seedResolver struct {
	src    graph.Source
	mode   Mode
	ratio  float64
	logger *logrus.Entry

	// rng is shared by all runs; the same sample seed replays the same
	// sequence of runs.
	mu  sync.Mutex
	rng *rand.Rand
}

func newSeedResolver(src graph.Source, mode Mode, ratio float64, sampleSeed int64, logger *logrus.Entry) *seedResolver {
	return &seedResolver{
		src:    src,
		mode:   mode,
		ratio:  ratio,
		logger: logger,
		rng:    rand.New(rand.NewSource(sampleSeed)),
	}
}

func (r *seedResolver) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode == ModeRandom {
		sg, err := extract.SampleVertices(ctx, r.src, r.ratio, r.rng)
		if err != nil {
			return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
		}
		payload.Subgraph = sg
		r.logger.WithFields(logrus.Fields{
			"run_id":   payload.RunID.String(),
			"vertices": len(sg.Vertices),
			"edges":    len(sg.Edges),
		}).Info("sampled random vertices")
		return payload, nil
	}

	var (
		seed *graph.Vertex
		err  error
	)
	if payload.HasSeed {
		seed, err = extract.Seed(ctx, r.src, payload.SeedID)
	} else {
		seed, err = extract.ChooseSeed(ctx, r.src, r.rng)
	}
	if err != nil {
		return nil, xerrors.Errorf("run %s: resolve seed: %w", payload.RunID, err)
	}
	payload.Seed = seed

	r.logger.WithFields(logrus.Fields{
		"run_id": payload.RunID.String(),
		"seed":   seed.ID,
		"title":  seed.Title,
	}).Info("resolved seed page")
	return payload, nil
}
