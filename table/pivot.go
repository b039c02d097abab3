package table

import "sort"

// Cell is a nullable aggregated value.
type Cell struct {
	Value int64
	Valid bool
}

// PivotRow holds the cells of one row key, aligned with Pivoted.Columns.
type PivotRow struct {
	Key   int64
	Cells []Cell
}

// Pivoted is the result of a pivot: one row per distinct row key, one column
// per distinct column key.
type Pivoted struct {
	Columns []string
	Rows    []PivotRow
}

// Keys returns the row keys of the pivot.
func (p *Pivoted) Keys() []int64 {
	keys := make([]int64, len(p.Rows))
	for i, r := range p.Rows {
		keys[i] = r.Key
	}
	return keys
}

// PivotMin groups rows by rowKey, spreads colKey values into columns and
// aggregates colliding values with min. Columns are sorted ascending and rows
// by ascending key. Row keys without any value produce no row, and a missing
// (row, column) combination yields an invalid cell.
func PivotMin[R any](t Table[R], rowKey func(R) int64, colKey func(R) string, value func(R) int64) *Pivoted {
	var (
		groups  = make(map[int64]map[string]int64)
		columns = make(map[string]struct{})
	)
	for _, r := range t.rows {
		rk, ck, v := rowKey(r), colKey(r), value(r)
		group := groups[rk]
		if group == nil {
			group = make(map[string]int64)
			groups[rk] = group
		}
		if cur, ok := group[ck]; !ok || v < cur {
			group[ck] = v
		}
		columns[ck] = struct{}{}
	}

	p := &Pivoted{Columns: make([]string, 0, len(columns))}
	for ck := range columns {
		p.Columns = append(p.Columns, ck)
	}
	sort.Strings(p.Columns)

	keys := make([]int64, 0, len(groups))
	for rk := range groups {
		keys = append(keys, rk)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, rk := range keys {
		row := PivotRow{Key: rk, Cells: make([]Cell, len(p.Columns))}
		for i, ck := range p.Columns {
			if v, ok := groups[rk][ck]; ok {
				row.Cells[i] = Cell{Value: v, Valid: true}
			}
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}
