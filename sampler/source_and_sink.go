package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// runRequest describes a single run before it enters the pipeline.
type runRequest struct {
	seedID  int64
	hasSeed bool
}

type runSource struct {
	requests []runRequest
	root     artifact.Store
	clk      clock.Clock

	// namespaced runs write below root/<run id>.
	namespaced bool

	next    int
	current runRequest
}

func (s *runSource) Error() error { return nil }

func (s *runSource) Next(ctx context.Context) bool {
	if s.next >= len(s.requests) || ctx.Err() != nil {
		return false
	}
	s.current = s.requests[s.next]
	s.next++
	return true
}

func (s *runSource) Payload() pipeline.Payload {
	p := payloadPool.Get().(*runPayload)
	p.RunID = uuid.New()
	p.StartedAt = s.clk.Now()
	p.SeedID = s.current.seedID
	p.HasSeed = s.current.hasSeed
	p.Store = s.root
	if s.namespaced {
		p.Store = s.root.Sub(p.RunID.String())
	}
	return p
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Mode     Mode
	Seed     *graph.Vertex
	Location string

	Vertices       int
	Edges          int
	TimeSeriesRows int

	StartedAt time.Time
	Duration  time.Duration
}

// resultSink collects the results of the runs that reached the end of the
// pipeline.
type resultSink struct {
	mode Mode
	clk  clock.Clock

	mu      sync.Mutex
	results []Result
}

func (s *resultSink) Consume(_ context.Context, p pipeline.Payload) error {
	payload := p.(*runPayload)
	res := Result{
		RunID:     payload.RunID.String(),
		Mode:      s.mode,
		Seed:      payload.Seed,
		Location:  payload.Store.String(),
		StartedAt: payload.StartedAt,
		Duration:  s.clk.Now().Sub(payload.StartedAt),
	}
	if b := payload.Bundle; b != nil {
		res.Vertices = len(b.Vertices)
		res.Edges = len(b.Edges)
		res.TimeSeriesRows = len(b.TimeSeries.Rows)
	}

	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	return nil
}

func (s *resultSink) getResults() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Result(nil), s.results...)
}
