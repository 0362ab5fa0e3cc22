package ensemble

import (
	"math/rand"

	"github.com/rotisserie/eris"
)

// BagConfig parameterizes the bagged-tree learner.
type BagConfig struct {
	Trees    int   `json:"trees"`
	MaxDepth int   `json:"max_depth"`
	MinLeaf  int   `json:"min_leaf"`
	// MaxFeatures caps the features considered per split, random-forest
	// style; <=0 considers all.
	MaxFeatures int   `json:"max_features"`
	Seed        int64 `json:"seed"`
}

// BaggedTrees is a fitted bootstrap-aggregated learner: full-depth trees
// on bootstrap samples, averaged.
type BaggedTrees struct {
	Config BagConfig   `json:"config"`
	Trees  []*TreeNode `json:"trees"`
}

// FitBag trains a bagged-tree regressor on the scaled matrix.
func FitBag(cfg BagConfig, X [][]float64, y []float64) (*BaggedTrees, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, eris.Errorf("ensemble: bag fit needs matching X/y, got %d/%d", len(X), len(y))
	}
	if cfg.Trees <= 0 {
		return nil, eris.New("ensemble: bag config requires positive trees")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(y)
	params := treeParams{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf, maxFeatures: cfg.MaxFeatures}

	b := &BaggedTrees{Config: cfg}
	for t := 0; t < cfg.Trees; t++ {
		// bootstrap: n draws with replacement
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		b.Trees = append(b.Trees, buildTree(X, y, idx, 0, params, rng))
	}
	return b, nil
}

// Predict averages the member trees for one scaled vector.
func (b *BaggedTrees) Predict(x []float64) float64 {
	if len(b.Trees) == 0 {
		return 0
	}
	var s float64
	for _, t := range b.Trees {
		s += t.Predict(x)
	}
	return s / float64(len(b.Trees))
}
