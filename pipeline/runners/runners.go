// Package runners contains the built-in pipeline.StageRunner
// implementations.
package runners

import (
	"context"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"golang.org/x/xerrors"
)

// process runs proc on payload and reports whether the result must be
// forwarded. Errors are sent to the stage error channel.
func process(ctx context.Context, proc pipeline.Processor, params pipeline.StageParams, payload pipeline.Payload) (pipeline.Payload, bool) {
	out, err := proc.Process(ctx, payload)
	if err != nil {
		pipeline.EmitError(xerrors.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
		return nil, false
	}
	if out == nil {
		payload.MarkAsProcessed()
		return nil, false
	}
	return out, true
}

// forward sends payload to the next stage unless ctx expires first.
func forward(ctx context.Context, params pipeline.StageParams, payload pipeline.Payload) bool {
	select {
	case params.Output() <- payload:
		return true
	case <-ctx.Done():
		return false
	}
}
