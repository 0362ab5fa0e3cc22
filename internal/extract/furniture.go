package extract

import (
	"regexp"
	"strconv"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

var (
	furnitureSeaterRule = numericRule{
		field: "seater",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,2})\s*[-\s]?seater`),
			regexp.MustCompile(`seater[\s:]*(\d{1,2})`),
		},
		plausible: inRange(1, 12),
	}

	// "6x4 ft", "6 x 4 x 2.5 feet"; height optional.
	furnitureDimsRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*x\s*(\d{1,3}(?:\.\d+)?)(?:\s*x\s*(\d{1,3}(?:\.\d+)?))?\s*(?:ft|feet|foot|inch|inches)`)
)

const (
	furnitureDimMin = 0.5
	furnitureDimMax = 30 // feet; anything larger is a typo or a plot size
)

func (e *Extractor) extractFurniture(spec *model.ExtractedSpec, lib *patterns.Library, lower string) {
	if score, ok := lib.LookupMaterial(lower); ok {
		spec.Set("material_score", score)
	}

	for _, typ := range lib.FurnitureTypes {
		if patterns.ContainsWord(lower, typ) {
			spec.Set("type_detected", 1)
			break
		}
	}
	if !spec.Has("type_detected") {
		spec.Set("type_detected", 0)
	}

	furnitureSeaterRule.apply(spec, lower)
	extractDimensions(spec, lower)

	furnitureComposites(spec)
}

// extractDimensions parses LxW(xH) claims, keeping only plausible
// per-dimension values. Volume is derived later by the feature engineer;
// here we only record what the seller actually wrote.
func extractDimensions(spec *model.ExtractedSpec, lower string) {
	m := furnitureDimsRe.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	names := []string{"length_ft", "width_ft", "height_ft"}
	for i, name := range names {
		if i+1 >= len(m) || m[i+1] == "" {
			break
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil || v < furnitureDimMin || v > furnitureDimMax {
			return
		}
		spec.Set(name, v)
	}
}

// Composite weights for the furniture grammar.
const (
	furnitureSeaterSizeWeight = 2.0

	furnitureTotalMaterialW = 0.35
	furnitureTotalCondW     = 0.25
	furnitureTotalBrandW    = 0.20
	furnitureTotalSizeW     = 0.20
)

func furnitureComposites(spec *model.ExtractedSpec) {
	if seats, ok := spec.Get("seater"); ok {
		spec.Set("size_score", seats*furnitureSeaterSizeWeight)
	} else if l, ok := spec.Get("length_ft"); ok {
		w := spec.GetOr("width_ft", 1)
		spec.Set("size_score", l*w)
	}

	total := furnitureTotalMaterialW*spec.GetOr("material_score", 0) +
		furnitureTotalCondW*spec.GetOr("condition_score", 0) +
		furnitureTotalBrandW*spec.GetOr("brand_score", 0) +
		furnitureTotalSizeW*spec.GetOr("size_score", 0)
	spec.Set("total_specs_score", total)
}
