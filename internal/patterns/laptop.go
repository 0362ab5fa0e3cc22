package patterns

import (
	"regexp"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// laptopLibrary builds the laptop grammar. CPU and GPU family slice order
// is the match precedence (Intel before AMD, RTX before GTX); the order is
// deliberate configuration, overridable via LoadOverrides, not an accident
// of map iteration.
func laptopLibrary() *Library {
	l := &Library{
		Category: model.CategoryLaptop,

		Brands: map[string]float64{
			"apple":     10,
			"razer":     9,
			"msi":       8,
			"dell":      8,
			"lenovo":    8,
			"microsoft": 8,
			"asus":      7,
			"hp":        7,
			"samsung":   7,
			"acer":      6,
			"huawei":    6,
			"toshiba":   5,
			"fujitsu":   4,
			"haier":     3,
		},
		BrandAliases: map[string]string{
			"macbook":  "apple",
			"thinkpad": "lenovo",
			"surface":  "microsoft",
		},
		ExclusiveModels: map[string][]string{
			"apple":     {"macbook", "imac"},
			"dell":      {"inspiron", "latitude", "vostro", "alienware", "precision"},
			"hp":        {"pavilion", "elitebook", "probook", "envy", "spectre", "omen", "victus"},
			"lenovo":    {"thinkpad", "ideapad", "legion", "yoga", "thinkbook"},
			"asus":      {"zenbook", "vivobook", "zephyrus", "strix"},
			"acer":      {"aspire", "predator", "swift", "travelmate"},
			"msi":       {"katana", "raider", "stealth"},
			"microsoft": {"surface"},
			"huawei":    {"matebook"},
			"razer":     {"blade"},
		},

		ConditionScores: mobileConditionLadder,

		CPUFamilies: []ProcessorFamily{
			{
				// Core i3/i5/i7/i9; the captured digit is the family number.
				Name:    "intel_core",
				Pattern: regexp.MustCompile(`(?i)\bi\s*-?\s*([3579])\b`),
				Tiers: []TierRange{
					{Min: 9, Max: 9, Tier: 9},
					{Min: 7, Max: 7, Tier: 7},
					{Min: 5, Max: 5, Tier: 5},
					{Min: 3, Max: 3, Tier: 3},
				},
				BaseTier: 4,
			},
			{
				Name:    "intel_ultra",
				Pattern: regexp.MustCompile(`(?i)core\s+ultra\s*([579])`),
				Tiers: []TierRange{
					{Min: 9, Max: 9, Tier: 10},
					{Min: 7, Max: 7, Tier: 8},
					{Min: 5, Max: 5, Tier: 6},
				},
				BaseTier: 6,
			},
			{
				Name:    "amd_ryzen",
				Pattern: regexp.MustCompile(`(?i)ryzen\s*([3579])`),
				Tiers: []TierRange{
					{Min: 9, Max: 9, Tier: 9},
					{Min: 7, Max: 7, Tier: 7},
					{Min: 5, Max: 5, Tier: 5},
					{Min: 3, Max: 3, Tier: 3},
				},
				BaseTier: 4,
			},
			{
				Name:    "apple_silicon",
				Pattern: regexp.MustCompile(`(?i)\bm([1-4])\b`),
				Tiers: []TierRange{
					{Min: 4, Max: 4, Tier: 10},
					{Min: 3, Max: 3, Tier: 9},
					{Min: 2, Max: 2, Tier: 8},
					{Min: 1, Max: 1, Tier: 7},
				},
				BaseTier: 7,
			},
			{
				Name:    "intel_celeron",
				Pattern: regexp.MustCompile(`(?i)\b(celeron|pentium)\b`),
				Tiers:   nil,
				BaseTier: 1,
			},
			{
				Name:    "amd_athlon",
				Pattern: regexp.MustCompile(`(?i)\b(athlon)\b`),
				Tiers:   nil,
				BaseTier: 2,
			},
		},

		GPUFamilies: []ProcessorFamily{
			{
				Name:    "nvidia_rtx",
				Pattern: regexp.MustCompile(`(?i)rtx\s*(\d{4})`),
				Tiers: []TierRange{
					{Min: 5000, Max: 5999, Tier: 10},
					{Min: 4000, Max: 4999, Tier: 9},
					{Min: 3000, Max: 3999, Tier: 8},
					{Min: 2000, Max: 2999, Tier: 6},
				},
				BaseTier: 6,
			},
			{
				Name:    "nvidia_gtx",
				Pattern: regexp.MustCompile(`(?i)gtx\s*(\d{3,4})`),
				Tiers: []TierRange{
					{Min: 1600, Max: 1699, Tier: 5},
					{Min: 1000, Max: 1599, Tier: 4},
					{Min: 700, Max: 999, Tier: 3},
				},
				BaseTier: 3,
			},
			{
				Name:    "nvidia_mx",
				Pattern: regexp.MustCompile(`(?i)\bmx\s*(\d{3})`),
				Tiers: []TierRange{
					{Min: 100, Max: 999, Tier: 2},
				},
				BaseTier: 2,
			},
			{
				Name:    "amd_radeon",
				Pattern: regexp.MustCompile(`(?i)\brx\s*(\d{4})`),
				Tiers: []TierRange{
					{Min: 7000, Max: 7999, Tier: 9},
					{Min: 6000, Max: 6999, Tier: 7},
					{Min: 5000, Max: 5999, Tier: 5},
				},
				BaseTier: 5,
			},
			{
				Name:    "integrated",
				Pattern: regexp.MustCompile(`(?i)\b(iris\s*xe|iris|uhd|integrated|vega)\b`),
				Tiers:   nil,
				BaseTier: 1,
			},
		},

		Flags: map[string][]string{
			"is_gaming":   {"gaming", "gamer"},
			"is_2in1":     {"2 in 1", "2-in-1", "x360", "convertible", "flip"},
			"touchscreen": {"touch screen", "touchscreen", "touch display"},
			"backlit":     {"backlit", "backlight keyboard"},
			"has_ssd":     {"ssd", "nvme", "solid state"},
		},

		SeriesKeywords: []string{
			"chromebook", "ultrabook", "workstation",
		},
		ProcessorTokens: []string{
			"i3", "i5", "i7", "i9", "ryzen", "celeron", "pentium", "athlon",
			"m1", "m2", "m3", "m4", "core ultra",
		},
	}
	return l.finalize()
}
