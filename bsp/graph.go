package bsp

import (
	"sync"
	"sync/atomic"

	"github.com/Ahmed-Sermani/wikicast/bsp/message"
	"golang.org/x/xerrors"
)

// ComputeFunc is a function that a graph instance invokes on each vertex when
// executing a superstep.
type ComputeFunc[VT, ET any] func(g *Graph[VT, ET], v *Vertex[VT, ET], msgIt message.Iterator) error

type Vertex[VT, ET any] struct {
	id     int64
	value  VT
	active bool
	// msgQueue[superstep%2] holds the messages for the current superstep
	// while msgQueue[(superstep+1)%2] buffers the messages for the next one.
	msgQueue [2]message.Queue
	edges    []*Edge[ET]
}

func (v *Vertex[VT, ET]) ID() int64 { return v.id }

func (v *Vertex[VT, ET]) Edges() []*Edge[ET] { return v.edges }

// Freeze marks the vertex as inactive. Inactive vertices will not be processed
// in the following supersteps unless they receive a message in which case they
// will be re-activated.
func (v *Vertex[VT, ET]) Freeze() { v.active = false }

func (v *Vertex[VT, ET]) Value() VT { return v.value }

func (v *Vertex[VT, ET]) SetValue(val VT) { v.value = val }

type Edge[ET any] struct {
	value ET
	dstID int64
}

func (e *Edge[ET]) DstID() int64 { return e.dstID }

func (e *Edge[ET]) Value() ET { return e.value }

func (e *Edge[ET]) SetValue(val ET) { e.value = val }

// Graph implements a parallel graph processor based on the concepts described
// in the Pregel paper https://15799.courses.cs.cmu.edu/fall2013/static/papers/p135-malewicz.pdf .
type Graph[VT, ET any] struct {
	superstep    int
	vertices     map[int64]*Vertex[VT, ET]
	queueFactory message.QueueFactory
	aggregators  map[string]Aggregator
	computeFunc  ComputeFunc[VT, ET]

	wg sync.WaitGroup

	// vertexCh is polled by the compute workers to obtain the next vertex
	// to be processed.
	vertexCh chan *Vertex[VT, ET]

	// errCh holds at most one error. Workers that find it full drop their
	// error since the step has already failed.
	errCh chan error

	// stepCompletedCh is signalled by the worker that processes the last
	// vertex of a superstep.
	stepCompletedCh chan struct{}

	// activeInStep counts the vertices processed in the current superstep.
	activeInStep int64

	// pendingInStep counts the vertices still to be processed in the
	// current superstep.
	pendingInStep int64
}

// NewGraph creates a new Graph instance using the specified configuration. It
// is important for callers to invoke Close() on the returned graph instance
// when they are done using it.
func NewGraph[VT, ET any](cfg GraphConfig[VT, ET]) (*Graph[VT, ET], error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph[VT, ET]{
		computeFunc:  cfg.ComputeFn,
		queueFactory: cfg.QueueFactory,
		aggregators:  make(map[string]Aggregator),
		vertices:     make(map[int64]*Vertex[VT, ET]),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph[VT, ET]) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph[VT, ET]) Reset() error {
	g.superstep = 0
	for _, v := range g.vertices {
		for i := 0; i < 2; i++ {
			if err := v.msgQueue[i].Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %d: %w", i, v.ID(), err)
			}
		}
	}
	g.vertices = make(map[int64]*Vertex[VT, ET])
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial value into
// the graph. If the vertex already exists, AddVertex will just overwrite its
// value with the provided initValue.
func (g *Graph[VT, ET]) AddVertex(id int64, initValue VT) {
	v := g.vertices[id]
	if v == nil {
		v = &Vertex[VT, ET]{
			id: id,
			msgQueue: [2]message.Queue{
				g.queueFactory(),
				g.queueFactory(),
			},
			active: true,
		}
		g.vertices[id] = v
	}
	v.SetValue(initValue)
}

// AddEdge inserts a directed edge from src to dst and annotates it with the
// specified initValue. Edges are owned by their source vertex so srcID must
// already be part of the graph.
func (g *Graph[VT, ET]) AddEdge(srcID, dstID int64, initValue ET) error {
	srcVertex := g.vertices[srcID]
	if srcVertex == nil {
		return xerrors.Errorf("create edge from %d to %d: %w", srcID, dstID, ErrUnknownEdgeSource)
	}

	srcVertex.edges = append(srcVertex.edges, &Edge[ET]{
		dstID: dstID,
		value: initValue,
	})
	return nil
}

func (g *Graph[VT, ET]) RegisterAggregator(name string, aggregator Aggregator) {
	g.aggregators[name] = aggregator
}

func (g *Graph[VT, ET]) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

func (g *Graph[VT, ET]) Aggregators() map[string]Aggregator { return g.aggregators }

func (g *Graph[VT, ET]) Superstep() int { return g.superstep }

func (g *Graph[VT, ET]) Vertices() map[int64]*Vertex[VT, ET] { return g.vertices }

// BroadcastToNeighbors sends msg to every vertex that v links to. Neighbors
// receive the message in the next superstep.
func (g *Graph[VT, ET]) BroadcastToNeighbors(v *Vertex[VT, ET], msg message.Message) error {
	for _, e := range v.edges {
		if err := g.SendMessage(e.DstID(), msg); err != nil {
			return err
		}
	}
	return nil
}

// SendMessage queues msg for delivery to the vertex with the specified
// destination ID. The recipient processes it in the next superstep.
func (g *Graph[VT, ET]) SendMessage(dst int64, msg message.Message) error {
	dstVertex := g.vertices[dst]
	if dstVertex == nil {
		return xerrors.Errorf("can't deliver message to %d: %w", dst, ErrInvalidMessageDestination)
	}
	return dstVertex.msgQueue[(g.superstep+1)%2].Enqueue(msg)
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph[VT, ET]) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex[VT, ET])
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker consumes vertexCh for incoming vertices and executes the configured
// ComputeFunc for each one. The worker exits when vertexCh gets closed.
func (g *Graph[VT, ET]) stepWorker() {
	defer g.wg.Done()
	for v := range g.vertexCh {
		buffer := g.superstep % 2
		if v.active || v.msgQueue[buffer].PendingMessages() {
			_ = atomic.AddInt64(&g.activeInStep, 1)
			v.active = true

			if err := g.computeFunc(g, v, v.msgQueue[buffer].Messages()); err != nil {
				emitError(g.errCh, xerrors.Errorf("error while running compute function for vertex %d: %w", v.ID(), err))
			} else if err := v.msgQueue[buffer].DiscardMessages(); err != nil {
				emitError(g.errCh, xerrors.Errorf("failed discarding unprocessed messages for vertex %d: %w", v.ID(), err))
			}
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because they
// received a message.
func (g *Graph[VT, ET]) step() (int, error) {
	// No worker is running between supersteps, plain writes are safe.
	g.activeInStep = 0
	g.pendingInStep = int64(len(g.vertices))

	if g.pendingInStep == 0 {
		return 0, nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// Block until the worker pool has finished processing all vertices.
	<-g.stepCompletedCh

	var err error
	select {
	case err = <-g.errCh:
	default:
	}

	return int(g.activeInStep), err
}

func emitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // the channel already contains an error
	}
}
