// Package validate rejects listings whose brand and model claims are
// internally inconsistent before they ever reach pricing. Rejections are
// typed, user-facing, and surfaced verbatim to the submitter; nothing
// here is retried or softened downstream.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// Validator is a pure function over listing text: no I/O, no side
// effects, safe on any goroutine.
type Validator struct {
	pats *patterns.Set
}

// New creates a Validator over the given grammar set.
func New(pats *patterns.Set) *Validator {
	return &Validator{pats: pats}
}

var digitRe = regexp.MustCompile(`\d`)

// ValidateListing validates the combined title and description.
func (v *Validator) ValidateListing(l model.Listing) model.ConflictReport {
	return v.Validate(l.Text(), l.Category)
}

// Validate runs the consistency gates for the category. The outcome is a
// two-terminal-state machine: Accept, or Reject with the first failing
// gate's reason.
func (v *Validator) Validate(text string, c model.Category) model.ConflictReport {
	lib := v.pats.For(c)
	if lib == nil {
		return model.Reject(model.RejectWrongCategory, fmt.Sprintf("unsupported category %q", c))
	}

	lower := strings.ToLower(text)

	if c == model.CategoryFurniture {
		return v.validateFurniture(lib, lower)
	}

	brand, ok := lib.DetectBrand(lower)
	if !ok {
		return model.Reject(model.RejectMissingBrand, "missing brand: no recognized brand keyword found")
	}

	if rep, conflicted := scanExclusiveModels(lib, lower, brand); conflicted {
		zap.L().Debug("validate: brand/model conflict",
			zap.String("brand", rep.MatchedBrand),
			zap.String("keyword", rep.ConflictingKeyword),
		)
		return rep
	}

	if !hasModelInfo(lib, lower) {
		rep := model.Reject(model.RejectInsufficientModel,
			fmt.Sprintf("brand %q present but no model/series info", brand))
		rep.MatchedBrand = brand
		return rep
	}

	return model.Accept(brand)
}

// scanExclusiveModels checks every other brand's exclusive-model keyword
// set for whole-word matches. Keywords shorter than
// patterns.MinConflictKeywordLen or on the generic-term stoplist never
// count as conflict evidence.
func scanExclusiveModels(lib *patterns.Library, lower, brand string) (model.ConflictReport, bool) {
	for owner, keywords := range lib.ExclusiveModels {
		if owner == brand {
			continue
		}
		for _, kw := range keywords {
			if len(kw) < patterns.MinConflictKeywordLen || patterns.IsGenericModelTerm(kw) {
				continue
			}
			if patterns.ContainsWord(lower, kw) {
				rep := model.Reject(model.RejectBrandConflict,
					fmt.Sprintf("brand %q cannot have model keyword %q exclusive to brand %q", brand, kw, owner))
				rep.MatchedBrand = brand
				rep.ConflictingKeyword = kw
				return rep, true
			}
		}
	}
	return model.ConflictReport{}, false
}

// hasModelInfo is the information-density gate: a listing must carry at
// least one of a digit sequence, a known series keyword, or a processor
// family token to be priceable.
func hasModelInfo(lib *patterns.Library, lower string) bool {
	if digitRe.MatchString(lower) {
		return true
	}
	for _, kws := range lib.ExclusiveModels {
		for _, kw := range kws {
			if patterns.ContainsWord(lower, kw) {
				return true
			}
		}
	}
	for _, kw := range lib.SeriesKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, tok := range lib.ProcessorTokens {
		if patterns.ContainsWord(lower, tok) {
			return true
		}
	}
	return false
}

// validateFurniture applies the furniture-specific gates: no electronics
// vocabulary anywhere in the text, and a recognized furniture type. The
// foreign-term gate is independent of type detection: "iPhone 13 sofa
// cover" is rejected even though "sofa" matches a type.
func (v *Validator) validateFurniture(lib *patterns.Library, lower string) model.ConflictReport {
	for _, term := range lib.ForeignTerms {
		if patterns.ContainsWord(lower, term) {
			return model.Reject(model.RejectWrongCategory,
				fmt.Sprintf("non-furniture keyword %q present in furniture listing", term))
		}
	}

	for _, typ := range lib.FurnitureTypes {
		if patterns.ContainsWord(lower, typ) {
			return model.Accept(typ)
		}
	}

	return model.Reject(model.RejectInsufficientModel,
		"no recognized furniture type in listing")
}
