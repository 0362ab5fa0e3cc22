package patterns

import "github.com/bazario-group/pricing-cli/internal/model"

// furnitureLibrary builds the furniture grammar. Unlike the electronics
// grammars this one has no processor tables; material and piece-type
// detection carry most of the pricing signal.
func furnitureLibrary() *Library {
	l := &Library{
		Category: model.CategoryFurniture,

		Brands: map[string]float64{
			"interwood": 8,
			"habitt":    7,
			"ikea":      7,
			"chiniot":   6,
			"index":     5,
			"master":    5,
			"dolce":     4,
		},
		BrandAliases: map[string]string{},
		ExclusiveModels: map[string][]string{},

		ConditionScores: furnitureConditionLadder,

		Materials: map[string]float64{
			"sheesham":   9,
			"solid wood": 9,
			"rosewood":   9,
			"teak":       9,
			"oak":        8,
			"walnut":     8,
			"leather":    8,
			"mahogany":   8,
			"wood":       6,
			"wooden":     6,
			"rattan":     6,
			"velvet":     6,
			"fabric":     5,
			"metal":      5,
			"steel":      5,
			"iron":       5,
			"glass":      4,
			"mdf":        3,
			"particle":   2,
			"plastic":    2,
		},

		FurnitureTypes: []string{
			"sofa", "bed", "table", "chair", "wardrobe", "almirah",
			"dressing", "dining", "desk", "shelf", "cabinet", "drawer",
			"mattress", "cupboard", "bookshelf", "stool", "ottoman",
		},

		// Whole-word tokens from the electronics vocabularies. Any match
		// rejects the listing outright, independent of furniture-type
		// detection.
		ForeignTerms: []string{
			"iphone", "phone", "mobile", "smartphone", "tablet", "laptop",
			"macbook", "charger", "earbuds", "airpods", "headphones",
			"processor", "motherboard", "console", "playstation",
		},

		Flags: map[string][]string{
			"handmade":   {"handmade", "hand made", "hand crafted", "handcrafted", "hand carved"},
			"imported":   {"imported"},
			"antique":    {"antique", "vintage"},
			"with_cover": {"with cover", "cushion", "cushions"},
		},

		SeriesKeywords: []string{
			"seater", "king size", "queen size", "single bed", "double bed",
			"l shape", "l-shape", "7 seater", "5 seater", "3 seater",
		},
	}
	return l.finalize()
}

// furnitureConditionLadder differs from the electronics ladder: sellers
// describe wear with termite/polish vocabulary rather than scratches.
var furnitureConditionLadder = map[string]float64{
	"brand new":     10,
	"new":           10,
	"unused":        10,
	"like new":      9,
	"excellent":     8,
	"polished":      8,
	"good":          7,
	"slightly used": 6,
	"used":          5,
	"fair":          5,
	"needs polish":  4,
	"worn":          3,
	"termite":       1,
	"broken":        1,
}
