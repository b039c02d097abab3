package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/dataset"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*assembler)(nil)

type assembler struct {
	views graph.Source
	order dataset.VertexOrder
}

func newAssembler(views graph.Source, order dataset.VertexOrder) *assembler {
	return &assembler{
		views: views,
		order: order,
	}
}

func (a *assembler) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	bundle, err := dataset.Assemble(ctx, a.views, payload.Subgraph, payload.Scores, payload.Seed, a.order)
	if err != nil {
		return nil, xerrors.Errorf("run %s: assemble dataset: %w", payload.RunID, err)
	}
	payload.Bundle = bundle
	return payload, nil
}

// vertexOrderFor returns the vertex table order used by mode.
func vertexOrderFor(mode Mode) dataset.VertexOrder {
	if mode == ModeRandom {
		return dataset.KeepOrder
	}
	return dataset.OrderByScore
}
