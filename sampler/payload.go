package sampler

import (
	"sync"
	"time"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/dataset"
	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/google/uuid"
)

var (
	_ pipeline.Payload = (*runPayload)(nil)

	payloadPool = sync.Pool{
		New: func() any { return new(runPayload) },
	}
)

// runPayload carries a run through the sampling pipeline. Each stage fills
// in its own result and never mutates the results of earlier stages.
type runPayload struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Store     artifact.Store

	// SeedID is only meaningful when HasSeed is set.
	SeedID  int64
	HasSeed bool

	Seed     *graph.Vertex
	Subgraph *extract.Subgraph
	Scores   map[int64]float64
	Ranked   []ranker.Score
	Bundle   *dataset.Bundle
}

// Clone implements pipeline.Payload. Stage results are shared since they are
// read-only once set.
func (p *runPayload) Clone() pipeline.Payload {
	newP := payloadPool.Get().(*runPayload)
	newP.RunID = p.RunID
	newP.StartedAt = p.StartedAt
	newP.Store = p.Store
	newP.SeedID = p.SeedID
	newP.HasSeed = p.HasSeed
	newP.Seed = p.Seed
	newP.Subgraph = p.Subgraph
	newP.Scores = p.Scores
	newP.Ranked = append(newP.Ranked[:0], p.Ranked...)
	newP.Bundle = p.Bundle
	return newP
}

// MarkAsProcessed implements pipeline.Payload.
func (p *runPayload) MarkAsProcessed() {
	p.RunID = uuid.Nil
	p.StartedAt = time.Time{}
	p.Store = nil
	p.SeedID = 0
	p.HasSeed = false
	p.Seed = nil
	p.Subgraph = nil
	p.Scores = nil
	p.Ranked = p.Ranked[:0]
	p.Bundle = nil
	payloadPool.Put(p)
}

func (p *runPayload) seedField() any {
	switch {
	case p.Seed != nil:
		return p.Seed.ID
	case p.HasSeed:
		return p.SeedID
	default:
		return nil
	}
}
