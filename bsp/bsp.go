/*
   Package bsp implements the Bulk Synchronous Parallel https://en.wikipedia.org/wiki/Bulk_synchronous_parallel
   computing model for processing graph data. Vertices are identified by the
   page ids of the link graph.
*/
package bsp

import (
	"golang.org/x/xerrors"
)

var (
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrInvalidMessageDestination is returned when a message is addressed to
	// a vertex that the graph does not know about.
	ErrInvalidMessageDestination = xerrors.New("invalid message destination")
)

type Aggregator interface {
	Type() string
	Set(val any)
	Get() any
	// updates the Aggregator value based on the current value.
	Aggregate(val any)

	// Delta returns the change in the aggregator's value since the last
	// call to Delta. Partially aggregated values of several workers can be
	// reduced into a single value by feeding their deltas into the Aggregate
	// method of a top-level aggregator.
	Delta() any
}
