package aggregators

import (
	"sync/atomic"

	"github.com/Ahmed-Sermani/wikicast/bsp"
)

var _ bsp.Aggregator = (*IntAggregator)(nil)

// IntAggregator implements a concurrent-safe counter for int values.
type IntAggregator struct {
	cur, prev atomic.Int64
}

func (a *IntAggregator) Type() string {
	return "IntAggregator"
}

func (a *IntAggregator) Get() any {
	return int(a.cur.Load())
}

func (a *IntAggregator) Set(v any) {
	a.cur.Store(int64(v.(int)))
	a.prev.Store(int64(v.(int)))
}

func (a *IntAggregator) Aggregate(v any) {
	a.cur.Add(int64(v.(int)))
}

func (a *IntAggregator) Delta() any {
	for {
		cur, prev := a.cur.Load(), a.prev.Load()
		if a.prev.CompareAndSwap(prev, cur) {
			return int(cur - prev)
		}
	}
}
