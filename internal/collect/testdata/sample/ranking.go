package sample

import "sort"

// Ranking orders scores with its own comparison.
type Ranking struct {
	scores []int
	desc   bool
}

func (r *Ranking) less(i, j int) bool {
	if r.desc {
		return r.scores[i] > r.scores[j]
	}
	return r.scores[i] < r.scores[j]
}

func (r Ranking) weight(v int) int { return v * 2 }

// Order sorts the scores in place.
func (r *Ranking) Order() {
	sort.SliceStable(r.scores, r.less)
}

// Weighted maps every score through the weight method.
func Weighted(r Ranking) []int {
	return apply(r.scores, Ranking.weight, r)
}

func apply(xs []int, f func(Ranking, int) int, r Ranking) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = f(r, x)
	}
	return out
}
