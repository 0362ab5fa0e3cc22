// Package predict chains extraction, validation, feature engineering and
// ensemble inference into the single-listing prediction contract.
package predict

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/extract"
	"github.com/bazario-group/pricing-cli/internal/feature"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
	"github.com/bazario-group/pricing-cli/internal/validate"
)

// Confidence tier cutoffs on the fraction of key fields genuinely
// extracted, and the price band half-width each tier earns.
const (
	highTierCutoff   = 0.75
	mediumTierCutoff = 0.50

	highMargin   = 0.05
	mediumMargin = 0.10
	lowMargin    = 0.20
)

// ErrNoModel reports a serving failure: no trained model is loaded for
// the listing's category. This is a distinct condition from a successful
// low-confidence prediction and must never be collapsed into one.
var ErrNoModel = eris.New("predict: no model loaded for category")

// Options tunes a single prediction call.
type Options struct {
	// SkipValidation bypasses the consistency gate. Used by debug
	// tooling; the listing-creation path always validates.
	SkipValidation bool
}

// Service produces price estimates for single listings. It is stateless
// between calls and safe for concurrent use: models come from the
// registry per call and are never mutated.
type Service struct {
	ex  *extract.Extractor
	val *validate.Validator
	reg *ensemble.Registry
}

// NewService builds a prediction service over the given pattern set and
// model registry; a nil pattern set uses the built-in grammars.
func NewService(pats *patterns.Set, reg *ensemble.Registry) *Service {
	if pats == nil {
		pats = patterns.Default()
	}
	return &Service{
		ex:  extract.New(pats),
		val: validate.New(pats),
		reg: reg,
	}
}

// Predict estimates a price for one listing. Three outcomes:
//   - validation rejected: result.Success is false and the report
//     carries the typed, user-facing reason; err is nil.
//   - no model for the category: err wraps ErrNoModel.
//   - success: result carries price, tier, band, extracted fields, and
//     the asking-price deviation when the listing declared one.
func (s *Service) Predict(l model.Listing, opts Options) (model.PredictionResult, model.ConflictReport, error) {
	if !opts.SkipValidation {
		report := s.val.ValidateListing(l)
		if !report.Valid {
			return model.PredictionResult{Success: false}, report, nil
		}
	}

	m, ok := s.reg.Get(l.Category)
	if !ok {
		return model.PredictionResult{}, model.ConflictReport{}, eris.Wrapf(ErrNoModel, "predict: category %s", l.Category)
	}

	spec := s.ex.ExtractListing(l)
	vec := feature.Engineer(spec, m.Manifest, m.Fills)
	price := m.Predict(vec)

	tier := tierFor(feature.ExtractedKeyFieldRatio(spec))
	margin := marginFor(tier)

	res := model.PredictionResult{
		Success:         true,
		PredictedPrice:  price,
		ConfidenceTier:  tier,
		PriceRangeMin:   price * (1 - margin),
		PriceRangeMax:   price * (1 + margin),
		ExtractedFields: copyValues(spec.Values),
	}
	if l.AskingPrice > 0 && price > 0 {
		d := (l.AskingPrice - price) / price
		res.Deviation = &d
	}

	zap.L().Debug("predict: listing priced",
		zap.String("category", string(l.Category)),
		zap.Float64("price", price),
		zap.String("tier", string(tier)))
	return res, model.Accept(spec.Brand), nil
}

func tierFor(ratio float64) model.ConfidenceTier {
	switch {
	case ratio > highTierCutoff:
		return model.ConfidenceHigh
	case ratio > mediumTierCutoff:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func marginFor(t model.ConfidenceTier) float64 {
	switch t {
	case model.ConfidenceHigh:
		return highMargin
	case model.ConfidenceMedium:
		return mediumMargin
	default:
		return lowMargin
	}
}

func copyValues(vals map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out
}
