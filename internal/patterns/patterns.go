// Package patterns holds the immutable per-category extraction grammars:
// brand score tables, condition ladders, processor/GPU tier tables, and
// keyword sets. Libraries are pure data constructed once at startup and
// injected into the extractor and validator; nothing in this package
// mutates a Library after construction.
package patterns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// Empirically tuned defaults. Named here so recalibration never hunts for
// inline literals.
const (
	// DefaultBrand is reported when no brand vocabulary entry matches.
	DefaultBrand = "unknown"
	// DefaultBrandScore is the mid-low prior for unrecognized brands.
	DefaultBrandScore = 3.0
	// DefaultConditionScore is the "good" tier assumed when the text
	// carries no condition signal.
	DefaultConditionScore = 7.0
	// TBToGB converts terabyte storage claims to gigabytes.
	TBToGB = 1024.0
	// MaxCPUGeneration caps the independently detected generation digit.
	MaxCPUGeneration = 14
	// MinConflictKeywordLen is the shortest exclusive-model keyword the
	// validator will treat as a conflict signal.
	MinConflictKeywordLen = 4
)

// TierRange buckets a detected model number into an ordinal tier.
type TierRange struct {
	Min  float64
	Max  float64
	Tier float64
}

// ProcessorFamily describes one CPU or GPU family: a detection pattern
// whose first capture group is the model number, and the range buckets
// mapping that number to a tier. Slice order in a Library is the match
// precedence: the first family whose pattern matches wins.
type ProcessorFamily struct {
	Name    string
	Pattern *regexp.Regexp
	Tiers   []TierRange
	// BaseTier is used when the pattern matches without a usable number.
	BaseTier float64
}

// Tier returns the ordinal tier for a model number, falling back to
// BaseTier when no bucket covers it.
func (f ProcessorFamily) Tier(n float64) float64 {
	for _, r := range f.Tiers {
		if n >= r.Min && n <= r.Max {
			return r.Tier
		}
	}
	return f.BaseTier
}

// Library is the full grammar for one category.
type Library struct {
	Category model.Category

	// Brands maps canonical brand name to its score.
	Brands map[string]float64
	// BrandAliases maps sub-brand keywords to the canonical brand they
	// imply (e.g. "galaxy" -> "samsung").
	BrandAliases map[string]string
	// ExclusiveModels maps canonical brand to model keywords that may
	// legitimately co-occur with that brand only.
	ExclusiveModels map[string][]string

	// ConditionScores is the condition keyword ladder.
	ConditionScores map[string]float64

	// CPUFamilies and GPUFamilies are tried in slice order.
	CPUFamilies []ProcessorFamily
	GPUFamilies []ProcessorFamily

	// Materials maps material keywords to a quality score (furniture).
	Materials map[string]float64
	// FurnitureTypes lists recognized furniture piece types.
	FurnitureTypes []string
	// ForeignTerms are whole-word tokens from other categories whose
	// presence rejects a listing in this category (furniture gate).
	ForeignTerms []string

	// Flags maps a boolean feature name to its trigger keyword set.
	Flags map[string][]string

	// SeriesKeywords are model/series tokens counting toward the
	// information-density gate, beyond exclusive model names.
	SeriesKeywords []string
	// ProcessorTokens are family tokens counting toward density.
	ProcessorTokens []string

	// precomputed longest-first key orders
	brandKeys     []string
	nameKeys      []string
	aliasKeys     []string
	conditionKeys []string
	materialKeys  []string
}

// finalize precomputes longest-first key orders. Called once by each
// category constructor; Libraries are immutable afterwards.
func (l *Library) finalize() *Library {
	l.brandKeys = longestFirst(keysOf(l.Brands), keysOfStr(l.BrandAliases))
	l.nameKeys = longestFirst(keysOf(l.Brands))
	l.aliasKeys = longestFirst(keysOfStr(l.BrandAliases))
	l.conditionKeys = longestFirst(keysOf(l.ConditionScores))
	l.materialKeys = longestFirst(keysOf(l.Materials))
	return l
}

// LookupBrand returns the first case-insensitive substring match over the
// brand vocabulary (canonical names and aliases), keys tried longest-first
// so a specific token wins over a generic one. Falls back to
// (DefaultBrand, DefaultBrandScore).
func (l *Library) LookupBrand(text string) (string, float64) {
	lower := strings.ToLower(text)
	for _, k := range l.brandKeys {
		if !strings.Contains(lower, k) {
			continue
		}
		name := k
		if canon, ok := l.BrandAliases[k]; ok {
			name = canon
		}
		return name, l.Brands[name]
	}
	return DefaultBrand, DefaultBrandScore
}

// DetectBrand resolves the single brand the listing claims, for
// validation. Canonical brand names take precedence over sub-brand
// aliases: "HP MacBook Pro" detects as hp so the exclusive-model scan can
// flag "macbook", while "Galaxy S23" (no explicit name) still resolves to
// samsung via its alias. Within each group keys are tried longest-first.
func (l *Library) DetectBrand(lower string) (string, bool) {
	for _, k := range l.nameKeys {
		if ContainsWord(lower, k) {
			return k, true
		}
	}
	for _, k := range l.aliasKeys {
		if ContainsWord(lower, k) {
			return l.BrandAliases[k], true
		}
	}
	return "", false
}

// LookupCondition returns the score of the longest condition keyword
// present in text, or (0, false) when none matches.
func (l *Library) LookupCondition(text string) (float64, bool) {
	lower := strings.ToLower(text)
	for _, k := range l.conditionKeys {
		if strings.Contains(lower, k) {
			return l.ConditionScores[k], true
		}
	}
	return 0, false
}

// LookupMaterial returns the score of the longest material keyword present
// in text, or (0, false) when none matches.
func (l *Library) LookupMaterial(text string) (float64, bool) {
	lower := strings.ToLower(text)
	for _, k := range l.materialKeys {
		if strings.Contains(lower, k) {
			return l.Materials[k], true
		}
	}
	return 0, false
}

// Set bundles the per-category libraries.
type Set struct {
	libs map[model.Category]*Library
}

// Default builds the built-in grammar set.
func Default() *Set {
	return &Set{libs: map[model.Category]*Library{
		model.CategoryMobile:    mobileLibrary(),
		model.CategoryLaptop:    laptopLibrary(),
		model.CategoryFurniture: furnitureLibrary(),
	}}
}

// For returns the library for a category, nil if unsupported.
func (s *Set) For(c model.Category) *Library {
	return s.libs[c]
}

// genericModelTerms is the stoplist of marketing suffixes shared across
// brands; they never count as brand-exclusive conflict evidence.
var genericModelTerms = map[string]struct{}{
	"pro": {}, "max": {}, "plus": {}, "ultra": {}, "mini": {}, "lite": {},
	"air": {}, "edge": {}, "prime": {}, "neo": {}, "core": {}, "slim": {},
	"book": {}, "note": {}, "play": {}, "power": {}, "smart": {}, "view": {},
}

// IsGenericModelTerm reports whether a token is on the stoplist.
func IsGenericModelTerm(tok string) bool {
	_, ok := genericModelTerms[strings.ToLower(tok)]
	return ok
}

// ContainsWord reports whether tok occurs in text as a whole word. Both
// arguments are expected lower-cased; word characters are ASCII
// letters and digits, which covers the listing vocabulary.
func ContainsWord(text, tok string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], tok)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(tok)
		leftOK := start == 0 || !isWordByte(text[start-1])
		rightOK := end == len(text) || !isWordByte(text[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func keysOf(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func keysOfStr(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// longestFirst merges key slices and orders them by descending length,
// ties broken alphabetically for determinism.
func longestFirst(slices ...[]string) []string {
	var out []string
	for _, s := range slices {
		out = append(out, s...)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
