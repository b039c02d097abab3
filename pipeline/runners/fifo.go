package runners

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
)

type fifo struct {
	proc pipeline.Processor
}

// FIFO returns a StageRunner that processes payloads one at a time in
// arrival order.
func FIFO(proc pipeline.Processor) pipeline.StageRunner {
	return fifo{proc: proc}
}

func (r fifo) Run(ctx context.Context, params pipeline.StageParams) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, open := <-params.Input():
			if !open {
				return
			}
			out, ok := process(ctx, r.proc, params, payload)
			if !ok {
				continue
			}
			if !forward(ctx, params, out) {
				return
			}
		}
	}
}
