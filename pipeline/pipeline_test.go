package pipeline_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Ahmed-Sermani/wikicast/pipeline"
	"github.com/Ahmed-Sermani/wikicast/pipeline/runners"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(PipelineTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type PipelineTestSuite struct{}

func (s *PipelineTestSuite) TestStageRunners(c *gc.C) {
	double := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		p.(*intPayload).value *= 2
		return p, nil
	})
	specs := []struct {
		descr  string
		runner pipeline.StageRunner
	}{
		{"fifo", runners.FIFO(double)},
		{"fixed worker pool", runners.FixedWorkerPool(double, 3)},
		{"dynamic worker pool", runners.DynamicWorkerPool(double, 3)},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		src := &sourceStub{data: payloads(1, 2, 3, 4, 5)}
		sink := new(sinkStub)

		err := pipeline.New(spec.runner, runners.FIFO(double)).Process(context.TODO(), src, sink)
		c.Assert(err, gc.IsNil)
		c.Assert(sink.sorted(), gc.DeepEquals, []int{4, 8, 12, 16, 20})
		for _, p := range src.data {
			c.Assert(p.processed, gc.Equals, true)
		}
	}
}

func (s *PipelineTestSuite) TestDroppedPayloadsAreMarkedProcessed(c *gc.C) {
	dropOdd := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		if p.(*intPayload).value%2 == 1 {
			return nil, nil
		}
		return p, nil
	})
	src := &sourceStub{data: payloads(1, 2, 3)}
	sink := new(sinkStub)

	c.Assert(pipeline.New(runners.FIFO(dropOdd)).Process(context.TODO(), src, sink), gc.IsNil)
	c.Assert(sink.sorted(), gc.DeepEquals, []int{2})
	for _, p := range src.data {
		c.Assert(p.processed, gc.Equals, true)
	}
}

func (s *PipelineTestSuite) TestBroadcast(c *gc.C) {
	var mu sync.Mutex
	var seen []int
	record := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		mu.Lock()
		seen = append(seen, p.(*intPayload).value)
		mu.Unlock()
		return nil, nil
	})
	forward := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		p.(*intPayload).value += 100
		return p, nil
	})

	src := &sourceStub{data: payloads(1, 2)}
	sink := new(sinkStub)
	err := pipeline.New(runners.Broadcast(forward, record)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.sorted(), gc.DeepEquals, []int{101, 102})

	sort.Ints(seen)
	c.Assert(seen, gc.DeepEquals, []int{1, 2})
}

func (s *PipelineTestSuite) TestProcessorErrorAbortsPipeline(c *gc.C) {
	fail := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, xerrors.New("boom")
	})
	src := &sourceStub{data: payloads(1, 2, 3)}

	err := pipeline.New(runners.FIFO(fail)).Process(context.TODO(), src, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, `(?s).*pipeline stage 0: boom.*`)
}

func (s *PipelineTestSuite) TestSourceAndSinkErrors(c *gc.C) {
	passThrough := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})

	src := &sourceStub{data: payloads(1), err: xerrors.New("read failed")}
	err := pipeline.New(runners.FIFO(passThrough)).Process(context.TODO(), src, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, `(?s).*pipeline source: read failed.*`)

	src = &sourceStub{data: payloads(1)}
	err = pipeline.New(runners.FIFO(passThrough)).Process(context.TODO(), src, &sinkStub{err: xerrors.New("disk full")})
	c.Assert(err, gc.ErrorMatches, `(?s).*pipeline sink: disk full.*`)
}

func (s *PipelineTestSuite) TestDynamicWorkerPoolCapsConcurrency(c *gc.C) {
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	slow := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return p, nil
	})

	src := &sourceStub{data: payloads(1, 2, 3, 4, 5, 6, 7, 8)}
	sink := new(sinkStub)
	err := pipeline.New(runners.DynamicWorkerPool(slow, 2)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.sorted(), gc.HasLen, 8)
	c.Assert(peak <= 2, gc.Equals, true, gc.Commentf("peak concurrency %d", peak))
}

func (s *PipelineTestSuite) TestCancelledContext(c *gc.C) {
	block := pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithTimeout(context.TODO(), 10*time.Millisecond)
	defer cancel()

	src := &sourceStub{data: payloads(1)}
	err := pipeline.New(runners.FIFO(block)).Process(ctx, src, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, `(?s).*context deadline exceeded.*`)
}

type intPayload struct {
	value     int
	processed bool
}

func (p *intPayload) Clone() pipeline.Payload { return &intPayload{value: p.value} }
func (p *intPayload) MarkAsProcessed()        { p.processed = true }

func payloads(values ...int) []*intPayload {
	out := make([]*intPayload, len(values))
	for i, v := range values {
		out[i] = &intPayload{value: v}
	}
	return out
}

type sourceStub struct {
	index int
	data  []*intPayload
	err   error
}

func (s *sourceStub) Next(context.Context) bool {
	if s.err != nil || s.index == len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sourceStub) Error() error { return s.err }

func (s *sourceStub) Payload() pipeline.Payload { return s.data[s.index-1] }

type sinkStub struct {
	mu   sync.Mutex
	data []int
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p pipeline.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, p.(*intPayload).value)
	return s.err
}

func (s *sinkStub) sorted() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]int(nil), s.data...)
	sort.Ints(out)
	return out
}
