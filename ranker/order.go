package ranker

import "sort"

// Score is the PageRank score of a single vertex.
type Score struct {
	ID    int64
	Score float64
}

// Order returns the scores sorted by descending score. Ties are broken by
// ascending vertex id so the order is stable across runs.
func Order(scores map[int64]float64) []Score {
	out := make([]Score, 0, len(scores))
	for id, s := range scores {
		out = append(out, Score{ID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
