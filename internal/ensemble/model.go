package ensemble

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/bazario-group/pricing-cli/internal/feature"
	"github.com/bazario-group/pricing-cli/internal/model"
)

// ArtifactVersion changes with any incompatible change to the artifact
// layout below.
const ArtifactVersion = 1

// LearnerCount is fixed: the weight vector and the learner slice always
// hold exactly four entries.
const LearnerCount = 4

// weightSumTolerance bounds the allowed drift of the weight vector sum
// from 1.
const weightSumTolerance = 1e-9

// LearnerKind tags a learner artifact.
type LearnerKind string

const (
	KindBoostDeep    LearnerKind = "boost_deep"
	KindBoostShallow LearnerKind = "boost_shallow"
	KindBagged       LearnerKind = "bagged"
	KindBoostCoarse  LearnerKind = "boost_coarse"
)

// LearnerArtifact is the tagged union of fitted learners: exactly one of
// Boost or Bag is set, per Kind.
type LearnerArtifact struct {
	Kind  LearnerKind    `json:"kind"`
	Boost *GradientBoost `json:"boost,omitempty"`
	Bag   *BaggedTrees   `json:"bag,omitempty"`
}

// Predict dispatches on the populated learner.
func (a LearnerArtifact) Predict(x []float64) float64 {
	switch {
	case a.Boost != nil:
		return a.Boost.Predict(x)
	case a.Bag != nil:
		return a.Bag.Predict(x)
	}
	return 0
}

func (a LearnerArtifact) valid() bool {
	return (a.Boost != nil) != (a.Bag != nil)
}

// TrainMeta records provenance of one training run inside the artifact.
type TrainMeta struct {
	RunID      string             `json:"run_id"`
	TrainedAt  time.Time          `json:"trained_at"`
	Examples   int                `json:"examples"`
	Filtered   int                `json:"filtered"`
	FellBack   bool               `json:"fell_back"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Model is the complete per-category prediction artifact. It is
// immutable after training: concurrent predictions share one instance
// without locking, and retraining replaces it wholesale via the
// Registry.
type Model struct {
	Version  int                  `json:"version"`
	Category model.Category       `json:"category"`
	Manifest feature.Manifest     `json:"manifest"`
	Fills    feature.FillStrategy `json:"fills"`
	Scaler   *RobustScaler        `json:"scaler"`
	Learners []LearnerArtifact    `json:"learners"`
	Weights  []float64            `json:"weights"`
	Meta     TrainMeta            `json:"meta"`
}

// Predict runs weighted inference on one raw (unscaled) feature vector.
// The result is floored at 0: a negative price is never returned.
func (m *Model) Predict(vec []float64) float64 {
	x := m.Scaler.Transform(vec)
	var out float64
	for i, l := range m.Learners {
		out += m.Weights[i] * l.Predict(x)
	}
	if out < 0 {
		return 0
	}
	return out
}

// Validate checks the structural invariants an artifact must satisfy
// before it may serve predictions. Loaders reject anything that fails.
func (m *Model) Validate() error {
	if m.Version != ArtifactVersion {
		return eris.Errorf("ensemble: artifact version %d, want %d", m.Version, ArtifactVersion)
	}
	if _, ok := model.ParseCategory(string(m.Category)); !ok {
		return eris.Errorf("ensemble: unknown category %q", m.Category)
	}
	if len(m.Learners) != LearnerCount {
		return eris.Errorf("ensemble: %d learners, want %d", len(m.Learners), LearnerCount)
	}
	for i, l := range m.Learners {
		if !l.valid() {
			return eris.Errorf("ensemble: learner %d (%s) malformed", i, l.Kind)
		}
	}
	if err := ValidateWeights(m.Weights); err != nil {
		return err
	}
	if m.Scaler == nil || m.Scaler.Len() != m.Manifest.Len() {
		return eris.Errorf("ensemble: scaler/manifest length mismatch")
	}
	if m.Manifest.Version != feature.ManifestVersion {
		return eris.Errorf("ensemble: manifest version %d, want %d", m.Manifest.Version, feature.ManifestVersion)
	}
	return nil
}

// ValidateWeights checks the fixed blend vector: four non-negative
// entries summing to 1 within tolerance.
func ValidateWeights(w []float64) error {
	if len(w) != LearnerCount {
		return eris.Errorf("ensemble: %d weights, want %d", len(w), LearnerCount)
	}
	var sum float64
	for _, v := range w {
		if v < 0 {
			return eris.Errorf("ensemble: negative weight %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return eris.Errorf("ensemble: weights sum to %v, want 1", sum)
	}
	return nil
}
