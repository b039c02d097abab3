package table

import (
	"math/rand"
	"testing"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TableTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type TableTestSuite struct{}

type pair struct {
	k int
	v string
}

func pairKey(p pair) int { return p.k }

func (s *TableTestSuite) TestFilterKeepsOrder(c *gc.C) {
	t := New(5, 1, 4, 2, 3)
	got := t.Filter(func(v int) bool { return v%2 == 1 })
	c.Assert(got.Rows(), gc.DeepEquals, []int{5, 1, 3})
	c.Assert(t.Len(), gc.Equals, 5)
}

func (s *TableTestSuite) TestMergeDistinctKeepsFirstOccurrence(c *gc.C) {
	a := New(pair{1, "a1"}, pair{2, "a2"}, pair{1, "a1-dup"})
	b := New(pair{3, "b3"}, pair{2, "b2"})

	got := MergeDistinct(pairKey, a, b)
	c.Assert(got.Rows(), gc.DeepEquals, []pair{{1, "a1"}, {2, "a2"}, {3, "b3"}})

	c.Assert(Distinct(b, pairKey).Rows(), gc.DeepEquals, b.Rows())
}

func (s *TableTestSuite) TestSemiJoin(c *gc.C) {
	t := New(pair{1, "a"}, pair{2, "b"}, pair{3, "c"}, pair{2, "d"})
	got := SemiJoin(t, pairKey, map[int]struct{}{2: {}, 9: {}})
	c.Assert(got.Rows(), gc.DeepEquals, []pair{{2, "b"}, {2, "d"}})
}

func (s *TableTestSuite) TestJoin(c *gc.C) {
	left := New(3, 1, 2)
	right := New(pair{1, "one"}, pair{3, "three"}, pair{3, "drei"})

	got := Join(left, right, func(l int) int { return l }, pairKey, func(l int, r pair) string {
		return r.v
	})
	c.Assert(got.Rows(), gc.DeepEquals, []string{"three", "drei", "one"})
}

func (s *TableTestSuite) TestOrderByIsStable(c *gc.C) {
	t := New(pair{2, "a"}, pair{1, "b"}, pair{2, "c"}, pair{1, "d"})
	got := t.OrderBy(func(a, b pair) bool { return a.k < b.k })
	c.Assert(got.Rows(), gc.DeepEquals, []pair{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}})
	// The receiver is left untouched.
	c.Assert(t.Rows()[0], gc.Equals, pair{2, "a"})
}

func (s *TableTestSuite) TestSampleIsDeterministicForSeed(c *gc.C) {
	rows := make([]int, 1000)
	for i := range rows {
		rows[i] = i
	}
	t := New(rows...)

	a := t.Sample(0.1, rand.New(rand.NewSource(42)))
	b := t.Sample(0.1, rand.New(rand.NewSource(42)))
	c.Assert(a.Rows(), gc.DeepEquals, b.Rows())
	c.Assert(a.Len() > 50 && a.Len() < 150, gc.Equals, true, gc.Commentf("sampled %d rows", a.Len()))

	c.Assert(t.Sample(1, rand.New(rand.NewSource(1))).Len(), gc.Equals, 1000)
	c.Assert(t.Sample(0, rand.New(rand.NewSource(1))).Len(), gc.Equals, 0)
}

type obs struct {
	id    int64
	date  string
	count int64
}

func (s *TableTestSuite) TestPivotMin(c *gc.C) {
	t := New(
		obs{2, "2020-01-02", 7},
		obs{1, "2020-01-01", 5},
		obs{1, "2020-01-01", 3},
		obs{2, "2020-01-01", 4},
		obs{1, "2020-01-03", 1},
	)

	got := PivotMin(t,
		func(o obs) int64 { return o.id },
		func(o obs) string { return o.date },
		func(o obs) int64 { return o.count },
	)
	c.Assert(got.Columns, gc.DeepEquals, []string{"2020-01-01", "2020-01-02", "2020-01-03"})
	c.Assert(got.Keys(), gc.DeepEquals, []int64{1, 2})
	c.Assert(got.Rows[0].Cells, gc.DeepEquals, []Cell{{3, true}, {0, false}, {1, true}})
	c.Assert(got.Rows[1].Cells, gc.DeepEquals, []Cell{{4, true}, {7, true}, {0, false}})
}

func (s *TableTestSuite) TestPivotOfEmptyTable(c *gc.C) {
	got := PivotMin(New[obs](),
		func(o obs) int64 { return o.id },
		func(o obs) string { return o.date },
		func(o obs) int64 { return o.count },
	)
	c.Assert(got.Columns, gc.HasLen, 0)
	c.Assert(got.Rows, gc.HasLen, 0)
}
