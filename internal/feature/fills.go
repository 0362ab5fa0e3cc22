package feature

import (
	"sort"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// FillStrategy maps each base field to the value used when extraction
// left it absent. It is frozen at training time, serialized inside the
// model artifact, and reused unmodified at serving time. The fill source
// must never depend on the request batch in scope at serving: that is the
// single highest-risk train/serve skew point in this system.
type FillStrategy struct {
	Fills map[string]float64 `json:"fills"`
}

// Fill returns the fill value for a field, 0 when the strategy has none.
func (f FillStrategy) Fill(name string) float64 {
	return f.Fills[name]
}

// Fixed per-field defaults: the typical mid-market value for each
// category, used when the training corpus itself has no signal for a
// field.
var fixedDefaults = map[model.Category]map[string]float64{
	model.CategoryMobile: {
		"ram": 4, "storage_gb": 64, "battery_mah": 4000,
		"camera_mp": 12, "screen_inches": 6.1, "chipset_tier": 5,
	},
	model.CategoryLaptop: {
		"ram": 8, "storage_gb": 256, "screen_inches": 15.6,
		"cpu_tier": 5, "cpu_generation": 8, "gpu_tier": 1,
	},
	model.CategoryFurniture: {
		"material_score": 5, "seater": 0,
		"length_ft": 0, "width_ft": 0, "height_ft": 0,
	},
}

// DefaultFills returns the fixed-default strategy for a category, used
// for cold starts and as the fallback inside FitFills.
func DefaultFills(c model.Category) FillStrategy {
	fills := make(map[string]float64, len(fixedDefaults[c]))
	for k, v := range fixedDefaults[c] {
		fills[k] = v
	}
	return FillStrategy{Fills: fills}
}

// FitFills freezes a fill strategy from the training specs: each fillable
// field gets the median of its genuinely extracted values, falling back
// to the fixed default when fewer than minFillSamples listings carried
// the field.
func FitFills(c model.Category, specs []*model.ExtractedSpec) FillStrategy {
	const minFillSamples = 10

	out := DefaultFills(c)
	for name := range fixedDefaults[c] {
		var vals []float64
		for _, s := range specs {
			if v, ok := s.Get(name); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) >= minFillSamples {
			out.Fills[name] = median(vals)
		}
	}
	return out
}

// median mutates its argument's order; callers pass throwaway slices.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
