// Package extract recovers structured specifications from free-text
// listings. Extraction never fails: every rule degrades to "field absent"
// and each field is extracted independently of the others.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// Extractor applies the pattern library to raw listing text. It performs
// no I/O and is safe for concurrent use.
type Extractor struct {
	pats *patterns.Set
}

// New creates an Extractor over the given grammar set.
func New(pats *patterns.Set) *Extractor {
	return &Extractor{pats: pats}
}

// Extract parses rawText for the given category. Unsupported categories
// yield an empty spec rather than an error; extraction cannot fail by
// construction.
func (e *Extractor) Extract(rawText string, c model.Category) *model.ExtractedSpec {
	spec := model.NewExtractedSpec(c)
	lib := e.pats.For(c)
	if lib == nil {
		zap.L().Warn("extract: unsupported category", zap.String("category", string(c)))
		return spec
	}

	lower := strings.ToLower(rawText)

	brand, brandScore := lib.LookupBrand(lower)
	spec.Brand = brand
	spec.Set("brand_score", brandScore)

	extractFlags(spec, lib, lower)
	extractCondition(spec, lib, lower, "")

	switch c {
	case model.CategoryMobile:
		e.extractMobile(spec, lib, lower)
	case model.CategoryLaptop:
		e.extractLaptop(spec, lib, lower)
	case model.CategoryFurniture:
		e.extractFurniture(spec, lib, lower)
	}

	return spec
}

// ExtractListing parses a full listing, letting a seller-declared
// condition override the keyword ladder.
func (e *Extractor) ExtractListing(l model.Listing) *model.ExtractedSpec {
	spec := e.Extract(l.Text(), l.Category)
	if l.Condition != "" {
		if lib := e.pats.For(l.Category); lib != nil {
			extractCondition(spec, lib, strings.ToLower(l.Text()), strings.ToLower(l.Condition))
		}
	}
	return spec
}

// numericRule extracts one numeric field: patterns are tried most specific
// first, and the first regex hit whose parsed value also passes plausible
// wins. Structurally valid but implausible matches (a price or a year
// caught by a bare-number rule) fall through to the next alternative.
type numericRule struct {
	field     string
	patterns  []*regexp.Regexp
	plausible func(v float64) bool
	// transform converts the captured value before the plausibility
	// check (TB→GB, etc). Nil means identity.
	transform func(v float64) float64
}

// apply runs the rule against lower-cased text, setting the field on the
// first plausible match. Returns true when a value was set.
func (r numericRule) apply(spec *model.ExtractedSpec, lower string) bool {
	for _, p := range r.patterns {
		for _, m := range p.FindAllStringSubmatch(lower, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if r.transform != nil {
				v = r.transform(v)
			}
			if r.plausible != nil && !r.plausible(v) {
				continue
			}
			spec.Set(r.field, v)
			return true
		}
	}
	return false
}

// inSet returns a plausibility check against a discrete allowed set.
func inSet(allowed ...float64) func(float64) bool {
	set := make(map[float64]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(v float64) bool {
		_, ok := set[v]
		return ok
	}
}

// inRange returns an inclusive range plausibility check.
func inRange(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

// extractFlags sets every boolean keyword feature to 0/1. Unlike optional
// numeric fields, flags are always present: absence of the keyword is
// itself the signal.
func extractFlags(spec *model.ExtractedSpec, lib *patterns.Library, lower string) {
	for name, words := range lib.Flags {
		v := 0.0
		for _, w := range words {
			if strings.Contains(lower, w) {
				v = 1.0
				break
			}
		}
		spec.Set(name, v)
	}
}

// extractProcessor runs the family tables in precedence order and records
// the winning family's tier. Returns the family name, "" when none match.
func extractProcessor(spec *model.ExtractedSpec, families []patterns.ProcessorFamily, field, lower string) string {
	for _, f := range families {
		m := f.Pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		tier := f.BaseTier
		if len(m) > 1 {
			if n, err := strconv.ParseFloat(m[1], 64); err == nil {
				tier = f.Tier(n)
			}
		}
		spec.Set(field, tier)
		return f.Name
	}
	return ""
}

var generationRe = regexp.MustCompile(`(\d{1,2})\s*(?:st|nd|rd|th)\s*gen`)

// extractGeneration detects an "Nth gen" claim independently of the
// family match, capped at patterns.MaxCPUGeneration.
func extractGeneration(spec *model.ExtractedSpec, lower string) {
	m := generationRe.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	g, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}
	if g > patterns.MaxCPUGeneration {
		g = patterns.MaxCPUGeneration
	}
	if g < 1 {
		return
	}
	spec.Set("cpu_generation", g)
}
