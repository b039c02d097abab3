package runners

import (
	"context"
	"sync"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
)

type fixedWorkerPool struct {
	fifos []pipeline.StageRunner
}

// FixedWorkerPool returns a StageRunner that spins up numWorkers FIFO
// runners sharing the stage channels.
func FixedWorkerPool(proc pipeline.Processor, numWorkers int) pipeline.StageRunner {
	if numWorkers <= 0 {
		panic("FixedWorkerPool: numWorkers must be greater than 0")
	}
	fifos := make([]pipeline.StageRunner, numWorkers)
	for i := range fifos {
		fifos[i] = FIFO(proc)
	}
	return &fixedWorkerPool{fifos: fifos}
}

func (p *fixedWorkerPool) Run(ctx context.Context, params pipeline.StageParams) {
	var wg sync.WaitGroup
	wg.Add(len(p.fifos))
	for _, f := range p.fifos {
		go func(f pipeline.StageRunner) {
			defer wg.Done()
			f.Run(ctx, params)
		}(f)
	}
	wg.Wait()
}
