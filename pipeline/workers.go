package pipeline

import (
	"context"

	"golang.org/x/xerrors"
)

// sourceWorker pushes the payloads of source into the input channel of the
// first stage.
func sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		select {
		case outCh <- source.Payload():
		case <-ctx.Done():
			return
		}
	}

	if err := source.Error(); err != nil {
		EmitError(xerrors.Errorf("pipeline source: %w", err), errCh)
	}
}

// sinkWorker hands the output of the last stage to sink and marks each
// payload as processed afterwards.
func sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, open := <-inCh:
			if !open {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				EmitError(xerrors.Errorf("pipeline sink: %w", err), errCh)
			}
			payload.MarkAsProcessed()
		}
	}
}

// EmitError reports err without blocking. The error channel has room for one
// error per pipeline component, extra errors are dropped.
func EmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
