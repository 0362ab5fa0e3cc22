package feature

import (
	"math"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// Formula constants shared verbatim by the training and serving paths.
const (
	// conditionDecayK controls the depreciation curve
	// exp(-(topCondition-condition)/k): k=5 halves value roughly every
	// 3.5 condition points.
	conditionDecayK = 5.0
	topCondition    = 10.0

	performanceRAMExp     = 1.5
	performanceStorageExp = 0.5

	gamingGPUBoost = 0.5

	interactionDivisor = 10.0
)

// Engineer fills every base field in manifest order, computes the derived
// composites from the filled values, and coerces any non-finite result to
// 0. The same spec always yields the same vector.
func Engineer(spec *model.ExtractedSpec, m Manifest, fills FillStrategy) []float64 {
	vals := make(map[string]float64, m.Len())
	vec := make([]float64, 0, m.Len())

	for _, name := range m.Base {
		v, ok := spec.Get(name)
		if !ok {
			v = fills.Fill(name)
		}
		v = finite(v)
		vals[name] = v
		vec = append(vec, v)
	}

	for _, name := range m.Derived {
		v := finite(derive(m.Category, name, vals))
		vals[name] = v
		vec = append(vec, v)
	}

	return vec
}

// derive computes one derived composite from the filled base values.
// Division-by-zero and log-of-nonpositive are prevented by construction
// (+1 offsets), not caught.
func derive(c model.Category, name string, vals map[string]float64) float64 {
	switch name {
	case "ram_storage_ratio":
		return (vals["ram"] + 1) / (vals["storage_gb"] + 1)
	case "performance":
		return math.Pow(vals["ram"], performanceRAMExp) * math.Pow(vals["storage_gb"], performanceStorageExp)
	case "depreciation":
		return math.Exp(-(topCondition - vals["condition_score"]) / conditionDecayK)
	case "brand_spec_interaction":
		return vals["brand_score"] * vals["total_specs_score"] / interactionDivisor
	case "gaming_score":
		return vals["gpu_tier"] * (1 + gamingGPUBoost*vals["is_gaming"])
	case "volume":
		return vals["length_ft"] * vals["width_ft"] * vals["height_ft"]
	case "material_condition":
		return vals["material_score"] * vals["condition_score"] / interactionDivisor
	}
	return 0
}

// finite coerces NaN and ±Inf to 0. The output invariant is that every
// vector element is a finite number.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ExtractedKeyFieldRatio returns the fraction of the category's key
// fields that were genuinely extracted (not filled). Drives the
// confidence tier.
func ExtractedKeyFieldRatio(spec *model.ExtractedSpec) float64 {
	keys := KeyFields(spec.Category)
	if len(keys) == 0 {
		return 0
	}
	n := 0
	for _, k := range keys {
		if spec.Has(k) {
			n++
		}
	}
	return float64(n) / float64(len(keys))
}
