package extract

import (
	"regexp"
	"strconv"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// ratingRe matches explicit "n/10" condition claims ("9/10 condition").
var ratingRe = regexp.MustCompile(`\b(10|[1-9])\s*/\s*10\b`)

// extractCondition scores listing condition using, in priority order: the
// seller's declared condition field, an explicit n/10 rating in the text,
// the keyword ladder, and finally the "good" tier default. The ladder is
// independent of numeric extraction by design.
func extractCondition(spec *model.ExtractedSpec, lib *patterns.Library, lower, declared string) {
	if declared != "" {
		if score, ok := lib.LookupCondition(declared); ok {
			spec.Set("condition_score", score)
			return
		}
	}

	if m := ratingRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			spec.Set("condition_score", ratingTier(n))
			return
		}
	}

	if score, ok := lib.LookupCondition(lower); ok {
		spec.Set("condition_score", score)
		return
	}

	spec.Set("condition_score", patterns.DefaultConditionScore)
}

// ratingTier maps an n/10 rating to a discrete condition tier rather than
// trusting the raw digit: sellers cluster at 9 and 10 regardless of
// actual wear.
func ratingTier(n float64) float64 {
	switch {
	case n >= 10:
		return 10
	case n >= 9:
		return 9
	case n >= 8:
		return 8
	case n >= 7:
		return 7
	case n >= 5:
		return 5
	default:
		return 3
	}
}
