package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*extractor)(nil)

type extractor struct {
	src    graph.Source
	kHops  int
	logger *logrus.Entry
}

func newExtractor(src graph.Source, kHops int, logger *logrus.Entry) *extractor {
	return &extractor{
		src:    src,
		kHops:  kHops,
		logger: logger,
	}
}

func (e *extractor) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	// Random sample runs already carry their subgraph.
	if payload.Subgraph != nil {
		return payload, nil
	}

	sg, err := extract.Extract(ctx, e.src, payload.Seed.ID, e.kHops)
	if err != nil {
		return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
	}
	payload.Subgraph = sg

	e.logger.WithFields(logrus.Fields{
		"run_id":   payload.RunID.String(),
		"seed":     payload.Seed.ID,
		"vertices": len(sg.Vertices),
		"edges":    len(sg.Edges),
	}).Info("extracted neighborhood")
	return payload, nil
}
