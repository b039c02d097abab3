package aggregators

import (
	"math"
	"sync/atomic"

	"github.com/Ahmed-Sermani/wikicast/bsp"
)

var _ bsp.Aggregator = (*Float64Aggregator)(nil)

// Float64Aggregator implements a concurrent-safe accumulator for float64
// values. Values are kept as their IEEE 754 bit patterns so they can be
// updated with compare-and-swap.
type Float64Aggregator struct {
	cur, prev atomic.Uint64
}

func (a *Float64Aggregator) Type() string {
	return "Float64Aggregator"
}

func (a *Float64Aggregator) Get() any {
	return math.Float64frombits(a.cur.Load())
}

// Set overwrites the value and resets the delta baseline.
func (a *Float64Aggregator) Set(v any) {
	bits := math.Float64bits(v.(float64))
	a.cur.Store(bits)
	a.prev.Store(bits)
}

func (a *Float64Aggregator) Aggregate(v any) {
	addFloat64(&a.cur, v.(float64))
}

func (a *Float64Aggregator) Delta() any {
	for {
		cur, prev := a.cur.Load(), a.prev.Load()
		if a.prev.CompareAndSwap(prev, cur) {
			return math.Float64frombits(cur) - math.Float64frombits(prev)
		}
	}
}

func addFloat64(dst *atomic.Uint64, delta float64) {
	for {
		old := dst.Load()
		if dst.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}
