// Package ensemble implements the four-learner regression ensemble:
// regression trees grown by variance reduction, combined by gradient
// boosting or bootstrap aggregation, blended with a fixed weight vector
// over one robust-scaled feature matrix.
package ensemble

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a regression tree. Leaf nodes have a nil Left.
// Field tags are short: artifacts serialize thousands of nodes.
type TreeNode struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *TreeNode `json:"l,omitempty"`
	Right     *TreeNode `json:"r,omitempty"`
	Value     float64   `json:"v"`
}

// Predict walks the tree for one scaled feature vector.
func (n *TreeNode) Predict(x []float64) float64 {
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// treeParams bound the growth of a single tree.
type treeParams struct {
	maxDepth int
	minLeaf  int
	// maxFeatures limits the features considered per split; <=0 means
	// all. Used by bagging for decorrelation.
	maxFeatures int
}

// buildTree grows a regression tree over X[idx] minimizing squared error.
// idx may contain repeats (bootstrap samples).
func buildTree(X [][]float64, y []float64, idx []int, depth int, p treeParams, rng *rand.Rand) *TreeNode {
	node := &TreeNode{Value: meanAt(y, idx)}
	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf {
		return node
	}

	feat, thresh, ok := bestSplit(X, y, idx, p, rng)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return node
	}

	node.Feature = feat
	node.Threshold = thresh
	node.Left = buildTree(X, y, left, depth+1, p, rng)
	node.Right = buildTree(X, y, right, depth+1, p, rng)
	return node
}

// bestSplit scans candidate features for the split with the lowest total
// child SSE, using prefix sums over the feature-sorted sample.
func bestSplit(X [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[0])
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	if p.maxFeatures > 0 && p.maxFeatures < nFeatures {
		rng.Shuffle(nFeatures, func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:p.maxFeatures]
	}

	bestSSE := sseAt(y, idx)
	bestFeat, bestThresh := -1, 0.0

	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var sumL, sqL float64
		sumT, sqT := sumAndSq(y, idx)

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			sumL += v
			sqL += v * v

			// split only between distinct feature values
			if X[order[k]][f] == X[order[k+1]][f] {
				continue
			}
			nL, nR := float64(k+1), float64(len(order)-k-1)
			if int(nL) < p.minLeaf || int(nR) < p.minLeaf {
				continue
			}
			sseL := sqL - sumL*sumL/nL
			sumR, sqR := sumT-sumL, sqT-sqL
			sseR := sqR - sumR*sumR/nR
			if sse := sseL + sseR; sse < bestSSE-1e-12 {
				bestSSE = sse
				bestFeat = f
				bestThresh = (X[order[k]][f] + X[order[k+1]][f]) / 2
			}
		}
	}

	return bestFeat, bestThresh, bestFeat >= 0
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func sumAndSq(y []float64, idx []int) (float64, float64) {
	var s, sq float64
	for _, i := range idx {
		s += y[i]
		sq += y[i] * y[i]
	}
	return s, sq
}

func sseAt(y []float64, idx []int) float64 {
	s, sq := sumAndSq(y, idx)
	n := float64(len(idx))
	if n == 0 {
		return 0
	}
	return sq - s*s/n
}
