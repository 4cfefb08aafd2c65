package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyDataset     = errors.New("training dataset is empty")
	ErrNoPositiveLabels = errors.New("training dataset has no positive labels")
)

// Model is a trained LambdaMART ranker: an additive ensemble of regression
// trees whose leaf values are already scaled by the learning rate. The model
// is immutable after training and safe for concurrent Predict calls.
type Model struct {
	Params      Params `json:"params"`
	NumFeatures int    `json:"num_features"`
	Trees       []Tree `json:"trees"`
}

// Train fits a listwise ranking ensemble. Pair rows are grouped per query
// (here: per candidate); groups holds the consecutive group sizes in row
// order. Gradients are LambdaRank gradients weighted by the NDCG@K swap
// delta, so the ensemble optimizes ranking quality rather than pointwise
// label regression.
func Train(features [][]float64, labels []float64, groups []int, params Params) (*Model, error) {
	p := params.normalized()

	n := len(features)
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	if len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d feature rows", len(labels), n)
	}
	total := 0
	for _, g := range groups {
		if g <= 0 {
			return nil, fmt.Errorf("group size %d is not positive", g)
		}
		total += g
	}
	if total != n {
		return nil, fmt.Errorf("group sizes sum to %d, want %d", total, n)
	}

	anyPositive := false
	for _, l := range labels {
		if l > 0 {
			anyPositive = true
			break
		}
	}
	if !anyPositive {
		return nil, ErrNoPositiveLabels
	}

	m := &Model{
		Params:      p,
		NumFeatures: len(features[0]),
		Trees:       make([]Tree, 0, p.NumBoostRound),
	}

	allRows := make([]int, n)
	for i := range allRows {
		allRows[i] = i
	}

	scores := make([]float64, n)
	grad := make([]float64, n)
	hess := make([]float64, n)

	for round := 0; round < p.NumBoostRound; round++ {
		lambdaGradients(scores, labels, groups, p.NDCGAt, grad, hess)
		tree := fitTree(features, grad, hess, allRows, p)
		for i := range scores {
			scores[i] += tree.Predict(features[i])
		}
		m.Trees = append(m.Trees, *tree)
	}

	return m, nil
}

// lambdaGradients fills grad and hess with LambdaRank gradients for the
// current scores. For every in-group pair with differing labels, the pair's
// contribution is weighted by the NDCG@K change that swapping the two rows
// in the current ranking would cause.
func lambdaGradients(scores, labels []float64, groups []int, k int, grad, hess []float64) {
	for i := range grad {
		grad[i] = 0
		hess[i] = 0
	}

	start := 0
	for _, size := range groups {
		end := start + size
		groupLambdas(scores, labels, start, end, k, grad, hess)
		start = end
	}
}

func groupLambdas(scores, labels []float64, start, end, k int, grad, hess []float64) {
	size := end - start
	if size < 2 {
		return
	}
	maxDCG := idealDCG(labels[start:end], k)
	if maxDCG == 0 {
		return
	}

	// Rank of each row in the current ranking, score-descending with row
	// order as the deterministic tie-break.
	order := make([]int, size)
	for i := range order {
		order[i] = start + i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	rank := make([]int, size)
	for pos, row := range order {
		rank[row-start] = pos
	}

	for i := start; i < end; i++ {
		for j := i + 1; j < end; j++ {
			if labels[i] == labels[j] {
				continue
			}
			hi, lo := i, j
			if labels[j] > labels[i] {
				hi, lo = j, i
			}

			rho := 1.0 / (1.0 + math.Exp(scores[hi]-scores[lo]))
			delta := math.Abs(dcgGain(labels[hi])-dcgGain(labels[lo])) *
				math.Abs(discount(rank[hi-start], k)-discount(rank[lo-start], k)) / maxDCG
			if delta == 0 {
				continue
			}

			lambda := rho * delta
			grad[hi] -= lambda
			grad[lo] += lambda

			h := rho * (1 - rho) * delta
			hess[hi] += h
			hess[lo] += h
		}
	}
}

func dcgGain(label float64) float64 {
	return math.Exp2(label) - 1
}

// discount is the DCG position discount, zero beyond the cutoff.
func discount(pos, k int) float64 {
	if pos >= k {
		return 0
	}
	return 1 / math.Log2(float64(pos)+2)
}

func idealDCG(labels []float64, k int) float64 {
	sorted := append([]float64(nil), labels...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	var dcg float64
	for pos, l := range sorted {
		if pos >= k {
			break
		}
		dcg += dcgGain(l) * discount(pos, k)
	}
	return dcg
}

// NDCG computes the mean NDCG@K of the given scores over all groups that
// have at least one positive label. Used for post-training evaluation.
func NDCG(scores, labels []float64, groups []int, k int) float64 {
	var sum float64
	var counted int

	start := 0
	for _, size := range groups {
		end := start + size
		maxDCG := idealDCG(labels[start:end], k)
		if maxDCG > 0 {
			order := make([]int, size)
			for i := range order {
				order[i] = start + i
			}
			sort.SliceStable(order, func(a, b int) bool {
				return scores[order[a]] > scores[order[b]]
			})
			var dcg float64
			for pos, row := range order {
				if pos >= k {
					break
				}
				dcg += dcgGain(labels[row]) * discount(pos, k)
			}
			sum += dcg / maxDCG
			counted++
		}
		start = end
	}

	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// Predict scores every feature row in one pass.
func (m *Model) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, x := range features {
		if len(x) != m.NumFeatures {
			return nil, fmt.Errorf("feature row %d has %d features, model expects %d", i, len(x), m.NumFeatures)
		}
		var s float64
		for t := range m.Trees {
			s += m.Trees[t].Predict(x)
		}
		out[i] = s
	}
	return out, nil
}
