package runners

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
)

type dynamicWorkerPool struct {
	proc pipeline.Processor
	// tokens caps the number of in-flight payloads.
	tokens chan struct{}
}

// DynamicWorkerPool returns a StageRunner that processes each payload in its
// own go-routine with at most maxWorkers of them running at any time.
func DynamicWorkerPool(proc pipeline.Processor, maxWorkers int) pipeline.StageRunner {
	if maxWorkers <= 0 {
		panic("DynamicWorkerPool: maxWorkers must be greater than 0")
	}
	tokens := make(chan struct{}, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		tokens <- struct{}{}
	}
	return &dynamicWorkerPool{proc: proc, tokens: tokens}
}

func (p *dynamicWorkerPool) Run(ctx context.Context, params pipeline.StageParams) {
	defer p.drain()

	for {
		var (
			payload pipeline.Payload
			open    bool
		)
		select {
		case <-ctx.Done():
			return
		case payload, open = <-params.Input():
			if !open {
				return
			}
		}

		var token struct{}
		select {
		case token = <-p.tokens:
		case <-ctx.Done():
			return
		}

		go func(payload pipeline.Payload, token struct{}) {
			defer func() { p.tokens <- token }()
			if out, ok := process(ctx, p.proc, params, payload); ok {
				forward(ctx, params, out)
			}
		}(payload, token)
	}
}

// drain waits for the in-flight workers by collecting every token, then puts
// them back so the runner can be reused.
func (p *dynamicWorkerPool) drain() {
	for i := 0; i < cap(p.tokens); i++ {
		<-p.tokens
	}
	for i := 0; i < cap(p.tokens); i++ {
		p.tokens <- struct{}{}
	}
}
