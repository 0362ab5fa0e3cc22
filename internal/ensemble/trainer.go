package ensemble

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/extract"
	"github.com/bazario-group/pricing-cli/internal/feature"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/outlier"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// minTrainExamples is the floor below which training aborts rather than
// produce a model fitted to noise.
const minTrainExamples = 30

// DefaultWeights is the fixed blend prior: the two boosted learners
// carry most of the mass, the bagged and coarse learners stabilize.
func DefaultWeights() []float64 {
	return []float64{0.35, 0.35, 0.15, 0.15}
}

// TrainConfig parameterizes one training run for one category.
type TrainConfig struct {
	Category model.Category
	Outlier  outlier.Strategy
	// Weights overrides DefaultWeights when non-nil. Must pass
	// ValidateWeights.
	Weights []float64
	// Holdout is the fraction of post-filter examples withheld for
	// evaluation; 0 trains and evaluates on the full set.
	Holdout float64
	Seed    int64
}

// Trainer fits complete per-category models from labeled listings.
type Trainer struct {
	ex *extract.Extractor
}

// NewTrainer builds a trainer on the given pattern set; nil uses the
// built-in grammars.
func NewTrainer(pats *patterns.Set) *Trainer {
	if pats == nil {
		pats = patterns.Default()
	}
	return &Trainer{ex: extract.New(pats)}
}

// Train runs the full pipeline: extract, freeze fills, engineer, filter
// outliers, scale, and fit all four learners. It is all-or-nothing: any
// learner failure aborts the run and no artifact is produced. The
// context is checked between learners so a cancelled run stops promptly.
func (t *Trainer) Train(ctx context.Context, cfg TrainConfig, listings []model.Listing) (*Model, error) {
	weights := cfg.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if cfg.Holdout < 0 || cfg.Holdout >= 1 {
		return nil, eris.Errorf("ensemble: holdout fraction %v out of [0,1)", cfg.Holdout)
	}

	specs := make([]*model.ExtractedSpec, 0, len(listings))
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Category != cfg.Category || l.AskingPrice <= 0 {
			continue
		}
		specs = append(specs, t.ex.ExtractListing(l))
		prices = append(prices, l.AskingPrice)
	}
	if len(specs) < minTrainExamples {
		return nil, eris.Errorf("ensemble: %d usable examples for %s, need at least %d",
			len(specs), cfg.Category, minTrainExamples)
	}

	// Fills are frozen here, against the extracted training corpus, and
	// travel inside the artifact. Serving never recomputes them.
	fills := feature.FitFills(cfg.Category, specs)
	manifest := feature.ManifestFor(cfg.Category)

	examples := make([]model.TrainingExample, len(specs))
	for i, s := range specs {
		examples[i] = model.TrainingExample{
			Features: feature.Engineer(s, manifest, fills),
			Price:    prices[i],
		}
	}

	res := outlier.Filter(examples, cfg.Outlier)
	zap.L().Info("ensemble: outlier filtering done",
		zap.String("category", string(cfg.Category)),
		zap.Int("total", res.Total),
		zap.Int("removed", res.Removed),
		zap.Bool("fell_back", res.FellBack))
	if len(res.Kept) < minTrainExamples {
		return nil, eris.Errorf("ensemble: %d examples after filtering for %s, need at least %d",
			len(res.Kept), cfg.Category, minTrainExamples)
	}

	train, hold := splitHoldout(res.Kept, cfg.Holdout, cfg.Seed)

	X := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, ex := range train {
		X[i] = ex.Features
		y[i] = ex.Price
	}

	scaler, err := FitScaler(X)
	if err != nil {
		return nil, eris.Wrap(err, "ensemble: fit scaler")
	}
	Xs := scaler.TransformMatrix(X)

	learners, err := fitLearners(ctx, cfg.Seed, Xs, y)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Version:  ArtifactVersion,
		Category: cfg.Category,
		Manifest: manifest,
		Fills:    fills,
		Scaler:   scaler,
		Learners: learners,
		Weights:  weights,
		Meta: TrainMeta{
			RunID:     uuid.NewString(),
			TrainedAt: time.Now().UTC(),
			Examples:  res.Total,
			Filtered:  res.Removed,
			FellBack:  res.FellBack,
			Metrics:   map[string]float64{},
		},
	}

	mae, rmse := evaluate(m, train)
	m.Meta.Metrics["train_mae"] = mae
	m.Meta.Metrics["train_rmse"] = rmse
	for i, l := range m.Learners {
		lmae, lrmse := evaluateLearner(m, i, train)
		m.Meta.Metrics["train_mae_"+string(l.Kind)] = lmae
		m.Meta.Metrics["train_rmse_"+string(l.Kind)] = lrmse
	}
	if len(hold) > 0 {
		hmae, hrmse := evaluate(m, hold)
		m.Meta.Metrics["holdout_mae"] = hmae
		m.Meta.Metrics["holdout_rmse"] = hrmse
	}

	if err := m.Validate(); err != nil {
		return nil, eris.Wrap(err, "ensemble: trained model failed validation")
	}
	zap.L().Info("ensemble: training complete",
		zap.String("category", string(cfg.Category)),
		zap.String("run_id", m.Meta.RunID),
		zap.Int("examples", len(train)),
		zap.Float64("train_mae", mae),
		zap.Float64("train_rmse", rmse))
	return m, nil
}

// fitLearners trains the four fixed learners in artifact order, aborting
// on the first failure or context cancellation.
func fitLearners(ctx context.Context, seed int64, X [][]float64, y []float64) ([]LearnerArtifact, error) {
	out := make([]LearnerArtifact, 0, LearnerCount)

	boosts := []struct {
		kind LearnerKind
		cfg  BoostConfig
	}{
		{KindBoostDeep, BoostConfig{Trees: 200, LearningRate: 0.05, MaxDepth: 4, MinLeaf: 5, Subsample: 1, Seed: seed + 1}},
		{KindBoostShallow, BoostConfig{Trees: 100, LearningRate: 0.10, MaxDepth: 6, MinLeaf: 3, Subsample: 0.8, Seed: seed + 2}},
	}
	for _, b := range boosts {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "ensemble: training cancelled")
		}
		g, err := FitBoost(b.cfg, X, y)
		if err != nil {
			return nil, eris.Wrapf(err, "ensemble: fit %s", b.kind)
		}
		out = append(out, LearnerArtifact{Kind: b.kind, Boost: g})
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "ensemble: training cancelled")
	}
	bag, err := FitBag(BagConfig{Trees: 50, MaxDepth: 8, MinLeaf: 3, MaxFeatures: maxFeaturesFor(X), Seed: seed + 3}, X, y)
	if err != nil {
		return nil, eris.Wrapf(err, "ensemble: fit %s", KindBagged)
	}
	out = append(out, LearnerArtifact{Kind: KindBagged, Bag: bag})

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "ensemble: training cancelled")
	}
	coarse, err := FitBoost(BoostConfig{Trees: 80, LearningRate: 0.15, MaxDepth: 3, MinLeaf: 8, Subsample: 1, Seed: seed + 4}, X, y)
	if err != nil {
		return nil, eris.Wrapf(err, "ensemble: fit %s", KindBoostCoarse)
	}
	out = append(out, LearnerArtifact{Kind: KindBoostCoarse, Boost: coarse})

	return out, nil
}

// maxFeaturesFor sets the bagged learner's per-split feature cap to
// roughly two thirds of the feature count, never below 1.
func maxFeaturesFor(X [][]float64) int {
	if len(X) == 0 {
		return 0
	}
	mf := 2 * len(X[0]) / 3
	if mf < 1 {
		mf = 1
	}
	return mf
}

// splitHoldout deterministically withholds a fraction of examples. The
// shuffle is seeded so repeated runs with the same seed split alike.
func splitHoldout(examples []model.TrainingExample, frac float64, seed int64) (train, hold []model.TrainingExample) {
	if frac <= 0 {
		return examples, nil
	}
	n := len(examples)
	k := int(float64(n) * frac)
	if k == 0 || n-k < minTrainExamples {
		return examples, nil
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	shuffled := make([]model.TrainingExample, n)
	for i, p := range perm {
		shuffled[i] = examples[p]
	}
	return shuffled[k:], shuffled[:k]
}

// evaluate returns MAE and RMSE of the model over the examples. Feature
// vectors are raw: Model.Predict applies the scaler.
func evaluate(m *Model, examples []model.TrainingExample) (mae, rmse float64) {
	if len(examples) == 0 {
		return 0, 0
	}
	var absSum, sqSum float64
	for _, ex := range examples {
		d := m.Predict(ex.Features) - ex.Price
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(examples))
	return absSum / n, math.Sqrt(sqSum / n)
}

// evaluateLearner scores one learner of the model in isolation, for
// per-learner diagnostics on the run journal.
func evaluateLearner(m *Model, idx int, examples []model.TrainingExample) (mae, rmse float64) {
	if len(examples) == 0 {
		return 0, 0
	}
	var absSum, sqSum float64
	for _, ex := range examples {
		pred := m.Learners[idx].Predict(m.Scaler.Transform(ex.Features))
		if pred < 0 {
			pred = 0
		}
		d := pred - ex.Price
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(examples))
	return absSum / n, math.Sqrt(sqSum / n)
}
