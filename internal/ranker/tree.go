package ranker

import "sort"

// Node is one node of a regression tree, stored in a flat slice with child
// links by index so the tree serializes to JSON directly.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

const l2Reg = 1e-6

// leafCandidate is a not-yet-split leaf and the best split found for it.
type leafCandidate struct {
	samples   []int
	gain      float64
	feature   int
	threshold float64
	left      []int
	right     []int
	nodeIndex int
}

// fitTree grows a regression tree leaf-wise on the gradient/hessian pairs,
// the same growth strategy gradient-boosting libraries use: always split the
// leaf with the highest gain until the leaf limit is reached or no split
// improves the loss. Leaf values are pre-scaled by the learning rate.
func fitTree(features [][]float64, grad, hess []float64, samples []int, p Params) *Tree {
	t := &Tree{}
	root := leafCandidate{samples: samples, nodeIndex: 0}
	t.Nodes = append(t.Nodes, Node{Leaf: true, Value: leafValue(grad, hess, samples, p.LearningRate)})
	findBestSplit(features, grad, hess, &root, p)

	open := []leafCandidate{root}
	leaves := 1
	for leaves < p.NumLeaves {
		best := -1
		for i, c := range open {
			if c.gain > 0 && (best < 0 || c.gain > open[best].gain) {
				best = i
			}
		}
		if best < 0 {
			break
		}

		c := open[best]
		open = append(open[:best], open[best+1:]...)

		left := leafCandidate{samples: c.left, nodeIndex: len(t.Nodes)}
		right := leafCandidate{samples: c.right, nodeIndex: len(t.Nodes) + 1}
		t.Nodes = append(t.Nodes,
			Node{Leaf: true, Value: leafValue(grad, hess, c.left, p.LearningRate)},
			Node{Leaf: true, Value: leafValue(grad, hess, c.right, p.LearningRate)},
		)
		t.Nodes[c.nodeIndex] = Node{
			Feature:   c.feature,
			Threshold: c.threshold,
			Left:      left.nodeIndex,
			Right:     right.nodeIndex,
		}
		leaves++

		findBestSplit(features, grad, hess, &left, p)
		findBestSplit(features, grad, hess, &right, p)
		open = append(open, left, right)
	}
	return t
}

// leafValue is the Newton step for the squared-hessian approximation,
// shrunk by the learning rate.
func leafValue(grad, hess []float64, samples []int, lr float64) float64 {
	var g, h float64
	for _, i := range samples {
		g += grad[i]
		h += hess[i]
	}
	if h+l2Reg == 0 {
		return 0
	}
	return -lr * g / (h + l2Reg)
}

func findBestSplit(features [][]float64, grad, hess []float64, c *leafCandidate, p Params) {
	c.gain = 0
	if len(c.samples) < 2*p.MinSamplesLeaf {
		return
	}

	var gTotal, hTotal float64
	for _, i := range c.samples {
		gTotal += grad[i]
		hTotal += hess[i]
	}
	parentScore := gTotal * gTotal / (hTotal + l2Reg)

	numFeatures := len(features[0])
	order := make([]int, len(c.samples))
	for f := 0; f < numFeatures; f++ {
		copy(order, c.samples)
		sort.Slice(order, func(a, b int) bool {
			return features[order[a]][f] < features[order[b]][f]
		})

		var gLeft, hLeft float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			gLeft += grad[i]
			hLeft += hess[i]

			v, next := features[i][f], features[order[pos+1]][f]
			if v == next {
				continue
			}
			if pos+1 < p.MinSamplesLeaf || len(order)-pos-1 < p.MinSamplesLeaf {
				continue
			}

			gRight := gTotal - gLeft
			hRight := hTotal - hLeft
			gain := gLeft*gLeft/(hLeft+l2Reg) + gRight*gRight/(hRight+l2Reg) - parentScore
			if gain > c.gain {
				c.gain = gain
				c.feature = f
				c.threshold = (v + next) / 2
				c.left = append(c.left[:0], order[:pos+1]...)
				c.right = append(c.right[:0], order[pos+1:]...)
			}
		}
	}
}
