package sampler

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/Ahmed-Sermani/wikicast/stats"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var (
	_ pipeline.Processor = (*artifactWriter)(nil)
	_ pipeline.Processor = (*statsWriter)(nil)
)

// artifactWriter persists the bundle and the manifest of a run.
type artifactWriter struct {
	mode   Mode
	params artifact.Params
	clk    clock.Clock
	logger *logrus.Entry
}

func newArtifactWriter(mode Mode, params artifact.Params, clk clock.Clock, logger *logrus.Entry) *artifactWriter {
	return &artifactWriter{
		mode:   mode,
		params: params,
		clk:    clk,
		logger: logger,
	}
}

func (w *artifactWriter) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)
	b := payload.Bundle

	if err := artifact.NewWriter(payload.Store).Write(ctx, b); err != nil {
		return nil, xerrors.Errorf("run %s: write artifacts: %w", payload.RunID, err)
	}

	finishedAt := w.clk.Now()
	m := &artifact.Manifest{
		RunID:  payload.RunID.String(),
		Mode:   string(w.mode),
		Params: w.params,
		Counts: artifact.Counts{
			Vertices:       len(b.Vertices),
			Edges:          len(b.Edges),
			TimeSeriesRows: len(b.TimeSeries.Rows),
			Dates:          len(b.TimeSeries.Columns),
		},
		StartedAt:  payload.StartedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(payload.StartedAt).String(),
	}
	if b.Seed != nil {
		m.Seed = &artifact.SeedEntry{ID: b.Seed.ID, Title: b.Seed.Title}
	}
	if err := artifact.WriteManifest(ctx, payload.Store, m); err != nil {
		return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
	}

	w.logger.WithFields(logrus.Fields{
		"run_id":   m.RunID,
		"location": payload.Store.String(),
		"vertices": m.Counts.Vertices,
		"edges":    m.Counts.Edges,
	}).Info("wrote run artifacts")
	return payload, nil
}

// statsWriter computes and stores the statistics of the final edge set. It
// is a terminal processor; its payload copies never reach the sink.
type statsWriter struct {
	plotter stats.Plotter
}

func newStatsWriter(plotter stats.Plotter) *statsWriter {
	return &statsWriter{plotter: plotter}
}

func (w *statsWriter) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	summary := stats.Compute(payload.Bundle.Edges)
	if err := stats.Write(ctx, payload.Store, summary, w.plotter); err != nil {
		return nil, xerrors.Errorf("run %s: write statistics: %w", payload.RunID, err)
	}
	return nil, nil
}
