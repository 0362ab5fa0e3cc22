package patterns

import (
	"regexp"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// mobileLibrary builds the phone grammar. Brand scores reflect resale
// value retention on the secondary market, not launch price.
func mobileLibrary() *Library {
	l := &Library{
		Category: model.CategoryMobile,

		Brands: map[string]float64{
			"apple":    10,
			"samsung":  9,
			"google":   8,
			"oneplus":  8,
			"xiaomi":   7,
			"huawei":   6,
			"oppo":     6,
			"vivo":     6,
			"realme":   5,
			"motorola": 5,
			"honor":    5,
			"nokia":    4,
			"tecno":    3,
			"infinix":  3,
			"itel":     2,
		},
		BrandAliases: map[string]string{
			"iphone": "apple",
			"galaxy": "samsung",
			"pixel":  "google",
			"redmi":  "xiaomi",
			"poco":   "xiaomi",
			"moto":   "motorola",
		},
		ExclusiveModels: map[string][]string{
			"apple":    {"iphone", "ipad", "airpods"},
			"samsung":  {"galaxy"},
			"google":   {"pixel"},
			"xiaomi":   {"redmi", "poco"},
			"oneplus":  {"nord"},
			"oppo":     {"reno"},
			"vivo":     {"iqoo"},
			"realme":   {"narzo"},
			"motorola": {"moto"},
			"tecno":    {"camon", "spark"},
			"infinix":  {"zero"},
		},

		ConditionScores: mobileConditionLadder,

		CPUFamilies: []ProcessorFamily{
			{
				Name:    "snapdragon",
				Pattern: regexp.MustCompile(`(?i)snapdragon\s*(\d{1,3})`),
				Tiers: []TierRange{
					{Min: 800, Max: 899, Tier: 9},
					{Min: 700, Max: 799, Tier: 7},
					{Min: 600, Max: 699, Tier: 5},
					{Min: 400, Max: 599, Tier: 3},
					// "8 gen 3" style names capture the single digit.
					{Min: 8, Max: 9, Tier: 9},
					{Min: 6, Max: 7, Tier: 7},
					{Min: 1, Max: 5, Tier: 5},
				},
				BaseTier: 5,
			},
			{
				Name:    "bionic",
				Pattern: regexp.MustCompile(`(?i)\ba(\d{2})\s*bionic`),
				Tiers: []TierRange{
					{Min: 16, Max: 19, Tier: 10},
					{Min: 14, Max: 15, Tier: 9},
					{Min: 11, Max: 13, Tier: 7},
				},
				BaseTier: 6,
			},
			{
				Name:    "dimensity",
				Pattern: regexp.MustCompile(`(?i)dimensity\s*(\d{3,4})`),
				Tiers: []TierRange{
					{Min: 9000, Max: 9999, Tier: 9},
					{Min: 8000, Max: 8999, Tier: 8},
					{Min: 1000, Max: 7999, Tier: 6},
					{Min: 700, Max: 999, Tier: 5},
				},
				BaseTier: 5,
			},
			{
				Name:    "exynos",
				Pattern: regexp.MustCompile(`(?i)exynos\s*(\d{3,4})`),
				Tiers: []TierRange{
					{Min: 2000, Max: 2999, Tier: 8},
					{Min: 1000, Max: 1999, Tier: 6},
					{Min: 100, Max: 999, Tier: 4},
				},
				BaseTier: 5,
			},
			{
				Name:    "helio",
				Pattern: regexp.MustCompile(`(?i)helio\s*[gp]?(\d{2,3})`),
				Tiers: []TierRange{
					{Min: 90, Max: 110, Tier: 5},
					{Min: 20, Max: 89, Tier: 3},
				},
				BaseTier: 3,
			},
		},

		Flags: map[string][]string{
			"is_5g":         {"5g"},
			"is_pta":        {"pta approved", "pta"},
			"is_amoled":     {"super amoled", "amoled", "oled"},
			"fast_charging": {"fast charging", "fast charge", "supervooc", "warp charge", "dart charge", "turbo charge"},
			"is_gaming":     {"gaming"},
		},

		SeriesKeywords: []string{
			"note", "prime", "flip", "fold",
		},
		ProcessorTokens: []string{
			"snapdragon", "dimensity", "exynos", "helio", "bionic", "kirin", "tensor",
		},
	}
	return l.finalize()
}

// mobileConditionLadder is shared with the other electronics category:
// the condition vocabulary sellers use does not vary between phones and
// laptops.
var mobileConditionLadder = map[string]float64{
	"brand new":     10,
	"new":           10,
	"box pack":      10,
	"box packed":    10,
	"sealed":        10,
	"open box":      9,
	"like new":      9,
	"barely used":   9,
	"excellent":     8,
	"mint":          8,
	"scratchless":   8,
	"good":          7,
	"well kept":     7,
	"used":          5,
	"fair":          5,
	"minor scratch": 5,
	"scratches":     4,
	"shade":         3,
	"dot":           3,
	"cracked":       2,
	"broken":        1,
	"dead":          1,
	"parts only":    1,
	"panel issue":   1,
}
