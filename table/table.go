// Package table implements the handful of relational operations the sampler
// needs over in-memory row collections: filtering, de-duplication,
// multi-source merging, semi-joins, hash joins, ordering, sampling and a
// date pivot. Tables are ordered; every operation keeps the input order
// unless it is an explicit ordering operation.
package table

import (
	"math/rand"
	"sort"
)

// Table is an ordered sequence of rows of type R.
type Table[R any] struct {
	rows []R
}

// New returns a table holding rows. The slice is not copied.
func New[R any](rows ...R) Table[R] {
	return Table[R]{rows: rows}
}

func (t Table[R]) Len() int { return len(t.rows) }

// Rows returns the underlying rows. Callers must not modify the slice.
func (t Table[R]) Rows() []R { return t.rows }

// Filter returns the rows for which pred holds.
func (t Table[R]) Filter(pred func(R) bool) Table[R] {
	var out []R
	for _, r := range t.rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return Table[R]{rows: out}
}

// OrderBy returns a copy of the table stably sorted by less.
func (t Table[R]) OrderBy(less func(a, b R) bool) Table[R] {
	out := append([]R(nil), t.rows...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return Table[R]{rows: out}
}

// Distinct keeps the first row seen for each key.
func Distinct[R any, K comparable](t Table[R], key func(R) K) Table[R] {
	return MergeDistinct(key, t)
}

// MergeDistinct unions several tables in a single pass, keeping the first row
// seen for each key.
func MergeDistinct[R any, K comparable](key func(R) K, tables ...Table[R]) Table[R] {
	var (
		seen = make(map[K]struct{})
		out  []R
	)
	for _, t := range tables {
		for _, r := range t.rows {
			k := key(r)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, r)
		}
	}
	return Table[R]{rows: out}
}

// SemiJoin keeps the rows whose key belongs to keys.
func SemiJoin[R any, K comparable](t Table[R], key func(R) K, keys map[K]struct{}) Table[R] {
	return t.Filter(func(r R) bool {
		_, ok := keys[key(r)]
		return ok
	})
}

// Join performs an inner hash join of left and right, emitting one combined
// row per matching pair in left order.
func Join[L, R, O any, K comparable](left Table[L], right Table[R], lkey func(L) K, rkey func(R) K, combine func(L, R) O) Table[O] {
	index := make(map[K][]R, len(right.rows))
	for _, r := range right.rows {
		k := rkey(r)
		index[k] = append(index[k], r)
	}

	var out []O
	for _, l := range left.rows {
		for _, r := range index[lkey(l)] {
			out = append(out, combine(l, r))
		}
	}
	return Table[O]{rows: out}
}

// Bernoulli returns a predicate that selects each row independently with the
// given probability. Use it with Filter, or on a stream of rows.
func Bernoulli[R any](fraction float64, rng *rand.Rand) func(R) bool {
	return func(R) bool { return rng.Float64() < fraction }
}

// Sample keeps each row with the given probability.
func (t Table[R]) Sample(fraction float64, rng *rand.Rand) Table[R] {
	return t.Filter(Bernoulli[R](fraction, rng))
}
