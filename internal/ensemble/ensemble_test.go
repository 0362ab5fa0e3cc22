package ensemble

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/feature"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/outlier"
)

// stepData builds a dataset where price depends on a single threshold of
// the first feature.
func stepData(n int) (X [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		v := rng.Float64() * 10
		X = append(X, []float64{v, rng.Float64()})
		if v < 5 {
			y = append(y, 100)
		} else {
			y = append(y, 500)
		}
	}
	return X, y
}

func TestTreeLearnsThresholdSplit(t *testing.T) {
	X, y := stepData(200)
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	root := buildTree(X, y, idx, 0, treeParams{maxDepth: 3, minLeaf: 2}, rand.New(rand.NewSource(1)))

	assert.InDelta(t, 100, root.Predict([]float64{1, 0.5}), 5)
	assert.InDelta(t, 500, root.Predict([]float64{9, 0.5}), 5)
}

func TestTreeConstantTargetIsLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{42, 42, 42, 42}
	root := buildTree(X, y, []int{0, 1, 2, 3}, 0, treeParams{maxDepth: 5, minLeaf: 1}, rand.New(rand.NewSource(1)))

	assert.Nil(t, root.Left)
	assert.Equal(t, 42.0, root.Predict([]float64{2.5}))
}

func TestBoostBeatsBaseMean(t *testing.T) {
	X, y := stepData(300)
	g, err := FitBoost(BoostConfig{Trees: 50, LearningRate: 0.1, MaxDepth: 3, MinLeaf: 2, Subsample: 1, Seed: 1}, X, y)
	require.NoError(t, err)

	var errBoost, errBase float64
	for i, x := range X {
		d := g.Predict(x) - y[i]
		errBoost += d * d
		d = g.Base - y[i]
		errBase += d * d
	}
	assert.Less(t, errBoost, errBase/10)
}

func TestBoostRejectsBadInput(t *testing.T) {
	_, err := FitBoost(BoostConfig{Trees: 10, LearningRate: 0.1, MaxDepth: 3}, nil, nil)
	assert.Error(t, err)

	_, err = FitBoost(BoostConfig{Trees: 10, LearningRate: 0.1, MaxDepth: 3}, [][]float64{{1}}, []float64{1, 2})
	assert.Error(t, err)
}

func TestBagPredictsNearTarget(t *testing.T) {
	X, y := stepData(300)
	b, err := FitBag(BagConfig{Trees: 20, MaxDepth: 6, MinLeaf: 2, Seed: 1}, X, y)
	require.NoError(t, err)

	assert.InDelta(t, 100, b.Predict([]float64{1, 0.5}), 50)
	assert.InDelta(t, 500, b.Predict([]float64{9, 0.5}), 50)
}

func TestScalerCentersOnMedian(t *testing.T) {
	X := [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}, {100, 50}}
	s, err := FitScaler(X)
	require.NoError(t, err)

	out := s.Transform([]float64{3, 30})
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 0, out[1], 1e-9)
}

func TestScalerZeroSpreadFeature(t *testing.T) {
	X := [][]float64{{5}, {5}, {5}}
	s, err := FitScaler(X)
	require.NoError(t, err)

	// Scale falls back to 1 so transformed values stay finite.
	assert.Equal(t, []float64{2.0}, s.Transform([]float64{7}))
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(DefaultWeights()))
	assert.Error(t, ValidateWeights([]float64{0.5, 0.5}))
	assert.Error(t, ValidateWeights([]float64{0.5, 0.5, 0.5, -0.5}))
	assert.Error(t, ValidateWeights([]float64{0.3, 0.3, 0.3, 0.3}))
}

func syntheticListings(n int) []model.Listing {
	rng := rand.New(rand.NewSource(11))
	rams := []int{4, 6, 8, 12}
	storages := []int{64, 128, 256}
	var out []model.Listing
	for i := 0; i < n; i++ {
		ram := rams[rng.Intn(len(rams))]
		st := storages[rng.Intn(len(storages))]
		price := float64(5000*ram+40*st) + rng.Float64()*2000
		out = append(out, model.Listing{
			Title:       fmt.Sprintf("Samsung Galaxy phone %dGB RAM %dGB storage", ram, st),
			Description: "used phone in good condition",
			Category:    model.CategoryMobile,
			AskingPrice: price,
		})
	}
	return out
}

func trainMobile(t *testing.T, cfg TrainConfig) *Model {
	t.Helper()
	tr := NewTrainer(nil)
	m, err := tr.Train(context.Background(), cfg, syntheticListings(150))
	require.NoError(t, err)
	return m
}

func TestTrainProducesValidModel(t *testing.T) {
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})

	require.NoError(t, m.Validate())
	assert.Len(t, m.Learners, LearnerCount)
	assert.NotEmpty(t, m.Meta.RunID)
	assert.Contains(t, m.Meta.Metrics, "train_mae")
	assert.Contains(t, m.Meta.Metrics, "train_rmse")
	for _, l := range m.Learners {
		assert.Contains(t, m.Meta.Metrics, "train_mae_"+string(l.Kind))
	}

	// A high-spec phone must price above a low-spec one.
	tr := NewTrainer(nil)
	hi := tr.ex.ExtractListing(model.Listing{
		Title: "Samsung Galaxy phone 12GB RAM 256GB storage", Category: model.CategoryMobile,
	})
	lo := tr.ex.ExtractListing(model.Listing{
		Title: "Samsung Galaxy phone 4GB RAM 64GB storage", Category: model.CategoryMobile,
	})
	hiVec := feature.Engineer(hi, m.Manifest, m.Fills)
	loVec := feature.Engineer(lo, m.Manifest, m.Fills)
	assert.Greater(t, m.Predict(hiVec), m.Predict(loVec))
}

func TestTrainHoldoutMetrics(t *testing.T) {
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Holdout: 0.2, Seed: 1})

	assert.Contains(t, m.Meta.Metrics, "holdout_mae")
	assert.Contains(t, m.Meta.Metrics, "holdout_rmse")
}

func TestTrainRejectsTinyCorpus(t *testing.T) {
	tr := NewTrainer(nil)
	_, err := tr.Train(context.Background(), TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore}, syntheticListings(10))
	assert.Error(t, err)
}

func TestTrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTrainer(nil)
	_, err := tr.Train(ctx, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore}, syntheticListings(150))
	assert.Error(t, err)
}

func TestPredictFloorsAtZero(t *testing.T) {
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})
	// Force a learner blend that would go negative.
	for i := range m.Learners {
		m.Learners[i].Boost = nil
		m.Learners[i].Bag = &BaggedTrees{Trees: []*TreeNode{{Value: -100}}}
	}
	vec := make([]float64, m.Manifest.Len())
	assert.Equal(t, 0.0, m.Predict(vec))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})
	require.NoError(t, Save(dir, m))

	loaded, err := Load(ArtifactPath(dir, model.CategoryMobile))
	require.NoError(t, err)
	assert.Equal(t, m.Meta.RunID, loaded.Meta.RunID)

	vec := make([]float64, m.Manifest.Len())
	for i := range vec {
		vec[i] = float64(i)
	}
	assert.InDelta(t, m.Predict(vec), loaded.Predict(vec), 1e-9)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})
	m.Weights = []float64{0.5, 0.5, 0.5, 0.5}
	assert.Error(t, Save(dir, m))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "mobile.model.json"))
	assert.Error(t, err)
}

func TestRegistrySwapAndGet(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get(model.CategoryMobile)
	assert.False(t, ok)

	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})
	require.NoError(t, r.Swap(m))

	got, ok := r.Get(model.CategoryMobile)
	require.True(t, ok)
	assert.Equal(t, m.Meta.RunID, got.Meta.RunID)
	assert.Equal(t, []model.Category{model.CategoryMobile}, r.Loaded())
}

func TestRegistryLoadDirSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	m := trainMobile(t, TrainConfig{Category: model.CategoryMobile, Outlier: outlier.StrategyZScore, Seed: 1})
	require.NoError(t, Save(dir, m))

	r := NewRegistry()
	n, err := r.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := r.Get(model.CategoryLaptop)
	assert.False(t, ok)
}
