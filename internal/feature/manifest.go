// Package feature converts extracted specifications into the dense,
// fixed-order numeric vectors the ensemble trains and predicts on. Field
// order is versioned: a persisted model is only valid against the
// manifest it was trained with.
package feature

import "github.com/bazario-group/pricing-cli/internal/model"

// ManifestVersion changes whenever any base or derived field list below
// changes order or content.
const ManifestVersion = 1

// Manifest fixes the feature order for one category. Base fields come
// from the extracted spec (or a fill value); derived fields are computed
// after fills from the filled base values.
type Manifest struct {
	Version  int            `json:"version"`
	Category model.Category `json:"category"`
	Base     []string       `json:"base"`
	Derived  []string       `json:"derived"`
}

// Names returns the full ordered feature name list.
func (m Manifest) Names() []string {
	out := make([]string, 0, len(m.Base)+len(m.Derived))
	out = append(out, m.Base...)
	out = append(out, m.Derived...)
	return out
}

// Len returns the vector length.
func (m Manifest) Len() int { return len(m.Base) + len(m.Derived) }

// ManifestFor returns the manifest for a category. The returned value is
// a copy; callers cannot corrupt the canonical order.
func ManifestFor(c model.Category) Manifest {
	m := manifests[c]
	out := Manifest{Version: m.Version, Category: m.Category}
	out.Base = append(out.Base, m.Base...)
	out.Derived = append(out.Derived, m.Derived...)
	return out
}

var manifests = map[model.Category]Manifest{
	model.CategoryMobile: {
		Version:  ManifestVersion,
		Category: model.CategoryMobile,
		Base: []string{
			"brand_score", "condition_score",
			"ram", "storage_gb", "battery_mah", "camera_mp", "screen_inches",
			"chipset_tier",
			"is_5g", "is_pta", "is_amoled", "fast_charging", "is_gaming",
			"storage_score", "camera_score", "total_specs_score",
		},
		Derived: []string{
			"ram_storage_ratio", "performance", "depreciation", "brand_spec_interaction",
		},
	},
	model.CategoryLaptop: {
		Version:  ManifestVersion,
		Category: model.CategoryLaptop,
		Base: []string{
			"brand_score", "condition_score",
			"ram", "storage_gb", "screen_inches",
			"cpu_tier", "cpu_generation", "gpu_tier",
			"is_gaming", "is_2in1", "touchscreen", "backlit", "has_ssd",
			"cpu_score", "gpu_score", "storage_score", "total_specs_score",
		},
		Derived: []string{
			"ram_storage_ratio", "performance", "depreciation", "gaming_score", "brand_spec_interaction",
		},
	},
	model.CategoryFurniture: {
		Version:  ManifestVersion,
		Category: model.CategoryFurniture,
		Base: []string{
			"brand_score", "condition_score", "material_score", "type_detected",
			"seater", "length_ft", "width_ft", "height_ft",
			"handmade", "imported", "antique", "with_cover",
			"size_score", "total_specs_score",
		},
		Derived: []string{
			"volume", "depreciation", "material_condition",
		},
	},
}

// KeyFields lists, per category, the spec fields whose genuine extraction
// (as opposed to fill) drives the prediction confidence tier.
func KeyFields(c model.Category) []string {
	switch c {
	case model.CategoryMobile:
		return []string{"ram", "storage_gb", "battery_mah", "camera_mp", "screen_inches", "chipset_tier"}
	case model.CategoryLaptop:
		return []string{"ram", "storage_gb", "screen_inches", "cpu_tier", "cpu_generation", "gpu_tier"}
	case model.CategoryFurniture:
		return []string{"material_score", "seater", "length_ft", "width_ft"}
	}
	return nil
}
