package ensemble

import (
	"math/rand"

	"github.com/rotisserie/eris"
)

// BoostConfig parameterizes one gradient-boosted learner. The two primary
// boosted learners in the ensemble deliberately carry different biases:
// one deep-and-slow, one shallow-and-fast.
type BoostConfig struct {
	Trees        int     `json:"trees"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	MinLeaf      int     `json:"min_leaf"`
	// Subsample is the row fraction drawn (without replacement) per
	// tree; 1 disables stochastic boosting.
	Subsample float64 `json:"subsample"`
	Seed      int64   `json:"seed"`
}

// GradientBoost is a fitted boosted-tree learner: a base prediction plus
// shrunken residual trees.
type GradientBoost struct {
	Config BoostConfig `json:"config"`
	Base   float64     `json:"base"`
	Trees  []*TreeNode `json:"trees"`
}

// FitBoost trains a gradient-boosted regressor on the scaled matrix.
func FitBoost(cfg BoostConfig, X [][]float64, y []float64) (*GradientBoost, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, eris.Errorf("ensemble: boost fit needs matching X/y, got %d/%d", len(X), len(y))
	}
	if cfg.Trees <= 0 || cfg.LearningRate <= 0 {
		return nil, eris.New("ensemble: boost config requires positive trees and learning rate")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(y)

	g := &GradientBoost{Config: cfg, Base: mean(y)}

	// residuals of the current model
	resid := make([]float64, n)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.Base
		resid[i] = y[i] - g.Base
	}

	params := treeParams{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	for t := 0; t < cfg.Trees; t++ {
		idx := all
		if cfg.Subsample > 0 && cfg.Subsample < 1 {
			idx = sampleWithout(rng, n, cfg.Subsample)
		}

		tree := buildTree(X, resid, idx, 0, params, rng)
		g.Trees = append(g.Trees, tree)

		for i := 0; i < n; i++ {
			pred[i] += cfg.LearningRate * tree.Predict(X[i])
			resid[i] = y[i] - pred[i]
		}
	}

	return g, nil
}

// Predict returns the boosted prediction for one scaled vector.
func (g *GradientBoost) Predict(x []float64) float64 {
	out := g.Base
	for _, t := range g.Trees {
		out += g.Config.LearningRate * t.Predict(x)
	}
	return out
}

// sampleWithout draws round(n*frac) distinct row indices.
func sampleWithout(rng *rand.Rand, n int, frac float64) []int {
	k := int(float64(n)*frac + 0.5)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func mean(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var s float64
	for _, v := range y {
		s += v
	}
	return s / float64(len(y))
}
