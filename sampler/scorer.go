package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*scorer)(nil)

// scorer runs PageRank over the subgraph of a run. It runs in a FIFO stage
// because the BSP ranker keeps a single graph instance.
type scorer struct {
	ranker ranker.Scorer
	logger *logrus.Entry
}

func newScorer(r ranker.Scorer, logger *logrus.Entry) *scorer {
	return &scorer{
		ranker: r,
		logger: logger,
	}
}

func (s *scorer) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	scores, err := s.ranker.Score(ctx, payload.Subgraph.IDs(), payload.Subgraph.Edges)
	if err != nil {
		return nil, xerrors.Errorf("run %s: rank subgraph: %w", payload.RunID, err)
	}
	payload.Scores = scores
	payload.Ranked = ranker.Order(scores)

	entry := s.logger.WithField("run_id", payload.RunID.String())
	if len(payload.Ranked) != 0 {
		entry = entry.WithField("top", payload.Ranked[0].ID)
	}
	entry.Debug("ranked subgraph")
	return payload, nil
}
