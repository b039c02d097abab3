package runners

import (
	"context"
	"sync"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
)

type broadcast struct {
	fifos []pipeline.StageRunner
}

// Broadcast returns a StageRunner that hands a copy of every input payload
// to each of procs. The first processor gets the original payload and the
// others get clones.
func Broadcast(procs ...pipeline.Processor) pipeline.StageRunner {
	if len(procs) == 0 {
		panic("Broadcast: at least one processor must be specified")
	}
	fifos := make([]pipeline.StageRunner, len(procs))
	for i, p := range procs {
		fifos[i] = FIFO(p)
	}
	return &broadcast{fifos: fifos}
}

func (b *broadcast) Run(ctx context.Context, params pipeline.StageParams) {
	var (
		wg    sync.WaitGroup
		inChs = make([]chan pipeline.Payload, len(b.fifos))
	)

	// Each FIFO gets its own input channel and shares the output and error
	// channels of the stage.
	for i := range b.fifos {
		inChs[i] = make(chan pipeline.Payload)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			b.fifos[idx].Run(ctx, &pipeline.WorkerParams{
				Stage: params.StageIndex(),
				InCh:  inChs[idx],
				OutCh: params.Output(),
				ErrCh: params.Error(),
			})
		}(i)
	}

	b.fanOut(ctx, params.Input(), inChs)

	for _, ch := range inChs {
		close(ch)
	}
	wg.Wait()
}

func (b *broadcast) fanOut(ctx context.Context, in <-chan pipeline.Payload, outs []chan pipeline.Payload) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, open := <-in:
			if !open {
				return
			}
			// Clones are taken before the original is handed over so no
			// FIFO mutates a payload that is still being copied.
			copies := make([]pipeline.Payload, len(outs))
			copies[0] = payload
			for i := 1; i < len(outs); i++ {
				copies[i] = payload.Clone()
			}
			for i, ch := range outs {
				select {
				case ch <- copies[i]:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
