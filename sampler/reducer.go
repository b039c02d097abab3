package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/component"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*reducer)(nil)

// reducer keeps the component of the top ranked vertex. Neighborhood runs
// pass through unchanged.
type reducer struct {
	mode   Mode
	logger *logrus.Entry
}

func newReducer(mode Mode, logger *logrus.Entry) *reducer {
	return &reducer{
		mode:   mode,
		logger: logger,
	}
}

func (r *reducer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)
	if r.mode != ModeRandom {
		return payload, nil
	}

	reduced, err := component.Reduce(payload.Subgraph, payload.Ranked)
	if err != nil {
		return nil, xerrors.Errorf("run %s: reduce to component: %w", payload.RunID, err)
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   payload.RunID.String(),
		"vertices": len(reduced.Vertices),
		"edges":    len(reduced.Edges),
	}).Info("reduced sample to the top vertex component")
	payload.Subgraph = reduced
	return payload, nil
}
