// Package outlier drops statistically extreme training prices before the
// ensemble sees them. Filtering is training-time only; nothing here runs
// on the serving path.
package outlier

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// Strategy selects the filtering method for a category.
type Strategy string

const (
	// StrategyZScore drops examples whose price z-score exceeds
	// ZScoreThreshold. Suits symmetric, high-volume categories.
	StrategyZScore Strategy = "zscore"
	// StrategyIQR drops examples outside the 5th/95th percentile band
	// widened by IQRMultiplier. Suits skewed, thin categories.
	StrategyIQR Strategy = "iqr"
)

const (
	ZScoreThreshold = 3.0
	IQRMultiplier   = 2.5
	LowerPercentile = 0.05
	UpperPercentile = 0.95

	// MinSurvivors guards against over-filtering: when fewer examples
	// would remain, the unfiltered set is used instead.
	MinSurvivors = 100
)

// Result reports what the filter did. Kept is always a subset of the
// input, in input order.
type Result struct {
	Kept     []model.TrainingExample
	Total    int
	Removed  int
	FellBack bool
}

// RemovedPct returns the percentage of examples removed.
func (r Result) RemovedPct() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 * float64(r.Removed) / float64(r.Total)
}

// Filter applies the strategy to the examples. An unknown strategy
// behaves as zscore.
func Filter(examples []model.TrainingExample, s Strategy) Result {
	if len(examples) == 0 {
		return Result{}
	}

	var keep func(price float64) bool
	switch s {
	case StrategyIQR:
		keep = iqrKeep(examples)
	default:
		keep = zscoreKeep(examples)
	}

	kept := make([]model.TrainingExample, 0, len(examples))
	for _, ex := range examples {
		if keep(ex.Price) {
			kept = append(kept, ex)
		}
	}

	res := Result{
		Kept:    kept,
		Total:   len(examples),
		Removed: len(examples) - len(kept),
	}

	if len(kept) < MinSurvivors {
		zap.L().Warn("outlier: filter would over-prune, using unfiltered set",
			zap.String("strategy", string(s)),
			zap.Int("total", res.Total),
			zap.Int("survivors", len(kept)),
		)
		res.Kept = examples
		res.Removed = 0
		res.FellBack = true
		return res
	}

	zap.L().Info("outlier: filtered training prices",
		zap.String("strategy", string(s)),
		zap.Int("total", res.Total),
		zap.Int("removed", res.Removed),
		zap.Float64("removed_pct", res.RemovedPct()),
	)
	return res
}

func zscoreKeep(examples []model.TrainingExample) func(float64) bool {
	prices := priceSlice(examples)
	mean, std := stat.MeanStdDev(prices, nil)
	if std == 0 {
		return func(float64) bool { return true }
	}
	return func(p float64) bool {
		z := (p - mean) / std
		if z < 0 {
			z = -z
		}
		return z <= ZScoreThreshold
	}
}

func iqrKeep(examples []model.TrainingExample) func(float64) bool {
	prices := priceSlice(examples)
	sort.Float64s(prices)

	lo := stat.Quantile(LowerPercentile, stat.Empirical, prices, nil)
	hi := stat.Quantile(UpperPercentile, stat.Empirical, prices, nil)
	band := hi - lo

	min := lo - IQRMultiplier*band
	max := hi + IQRMultiplier*band
	return func(p float64) bool { return p >= min && p <= max }
}

func priceSlice(examples []model.TrainingExample) []float64 {
	out := make([]float64, len(examples))
	for i, ex := range examples {
		out[i] = ex.Price
	}
	return out
}
