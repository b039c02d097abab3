// Package pipeline implements a multi-stage data processing pipeline. Each
// stage reads payloads from its input channel, processes them and hands the
// results to the next stage. A Source feeds the first stage and a Sink
// consumes the output of the last one.
package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Payload is implemented by values that can be sent through the pipeline.
type Payload interface {
	// Clone returns a new Payload that's a deep-copy of the original.
	Clone() Payload

	// MarkAsProcessed is called by the pipeline when the payload reaches
	// the sink or gets discarded by a stage.
	MarkAsProcessed()
}

// Processor is implemented by types that can process a Payload as part of a
// pipeline stage.
type Processor interface {
	// Process returns the payload for the next stage. Returning a nil
	// payload drops the input payload from the pipeline.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageParams carries the channels a stage runner works with.
type StageParams interface {
	// StageIndex returns the position of a stage in the pipeline.
	StageIndex() int
	Input() <-chan Payload
	Output() chan<- Payload
	// Error returns a channel for reporting processing errors.
	Error() chan<- error
}

// StageRunner is implemented by types that can be chained together to form
// a multi-stage pipeline.
type StageRunner interface {
	// Run blocks until the input channel is closed, the context is
	// cancelled or an error occurs.
	Run(context.Context, StageParams)
}

type Source interface {
	// Next fetches the next payload. It returns false when the source is
	// exhausted or an error occurred.
	Next(context.Context) bool

	Payload() Payload

	// Error returns the last error observed by the source.
	Error() error
}

type Sink interface {
	// Consume processes a payload that made it through every stage.
	Consume(context.Context, Payload) error
}

var _ StageParams = (*WorkerParams)(nil)

// WorkerParams is the StageParams implementation handed to stage runners.
type WorkerParams struct {
	Stage int
	InCh  <-chan Payload
	OutCh chan<- Payload
	ErrCh chan<- error
}

func (wp *WorkerParams) StageIndex() int        { return wp.Stage }
func (wp *WorkerParams) Input() <-chan Payload  { return wp.InCh }
func (wp *WorkerParams) Output() chan<- Payload { return wp.OutCh }
func (wp *WorkerParams) Error() chan<- error    { return wp.ErrCh }

type Pipeline struct {
	stages []StageRunner
}

// New returns a Pipeline where input payloads traverse each one of the
// stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Process reads the contents of source, sends them through the stages of the
// pipeline and hands the results to sink. It blocks until the source is
// drained, an error occurs or ctx expires, and returns every error that
// occurred. The first error cancels the remaining work.
//
// It is safe to call Process concurrently with different sources and sinks.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()

	// stageCh[i] feeds stage i; the extra channel connects the last stage
	// to the sink.
	stageCh := make([]chan Payload, len(p.stages)+1)
	errCh := make(chan error, len(p.stages)+2)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}

	wg.Add(len(p.stages))
	for i := range p.stages {
		go func(stageIdx int) {
			defer wg.Done()
			p.stages[stageIdx].Run(ctx, &WorkerParams{
				Stage: stageIdx,
				InCh:  stageCh[stageIdx],
				OutCh: stageCh[stageIdx+1],
				ErrCh: errCh,
			})
			close(stageCh[stageIdx+1])
		}(i)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceWorker(ctx, source, stageCh[0], errCh)
		close(stageCh[0])
	}()
	go func() {
		defer wg.Done()
		sinkWorker(ctx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	go func() {
		wg.Wait()
		close(errCh)
		ctxCancel()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		ctxCancel()
	}
	return err
}
