package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

func newValidator() *Validator {
	return New(patterns.Default())
}

func TestValidate_BrandModelConflict(t *testing.T) {
	v := newValidator()

	rep := v.Validate("HP MacBook Pro 2019", model.CategoryLaptop)
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectBrandConflict, rep.Code)
	assert.Equal(t, "hp", rep.MatchedBrand)
	assert.Equal(t, "macbook", rep.ConflictingKeyword)
	assert.Contains(t, rep.Reason, "apple")
}

func TestValidate_ConsistentListingAccepted(t *testing.T) {
	v := newValidator()

	rep := v.Validate("Dell Inspiron i5 8GB RAM", model.CategoryLaptop)
	assert.True(t, rep.Valid)
	assert.Equal(t, "dell", rep.MatchedBrand)
}

func TestValidate_MissingBrand(t *testing.T) {
	v := newValidator()

	rep := v.Validate("slightly used phone, good battery", model.CategoryMobile)
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectMissingBrand, rep.Code)
}

func TestValidate_SubBrandResolvesBrand(t *testing.T) {
	v := newValidator()

	rep := v.Validate("Galaxy S23 Ultra 256GB", model.CategoryMobile)
	assert.True(t, rep.Valid)
	assert.Equal(t, "samsung", rep.MatchedBrand)
}

func TestValidate_OwnModelKeywordNotAConflict(t *testing.T) {
	v := newValidator()

	rep := v.Validate("Samsung Galaxy Note 20", model.CategoryMobile)
	assert.True(t, rep.Valid)
}

func TestValidate_GenericTermsNeverConflict(t *testing.T) {
	v := newValidator()

	// "ultra" and "pro" appear across brands; they must not trip the
	// exclusive-model scan.
	rep := v.Validate("Xiaomi 13 Pro Ultra edition", model.CategoryMobile)
	assert.True(t, rep.Valid)
}

func TestValidate_InsufficientModelInfo(t *testing.T) {
	v := newValidator()

	rep := v.Validate("Samsung mobile for sale urgent", model.CategoryMobile)
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectInsufficientModel, rep.Code)
	assert.Equal(t, "samsung", rep.MatchedBrand)
}

func TestValidate_ProcessorTokenCountsAsModelInfo(t *testing.T) {
	v := newValidator()

	// No digits, no series name, but a processor family token.
	rep := v.Validate("Dell laptop with ryzen processor", model.CategoryLaptop)
	assert.True(t, rep.Valid)
}

func TestValidateFurniture_ForeignTermRejected(t *testing.T) {
	v := newValidator()

	rep := v.Validate("iPhone 13 sofa cover", model.CategoryFurniture)
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectWrongCategory, rep.Code)
	assert.Contains(t, rep.Reason, "iphone")
}

func TestValidateFurniture_TypeRequired(t *testing.T) {
	v := newValidator()

	rep := v.Validate("beautiful sheesham piece", model.CategoryFurniture)
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectInsufficientModel, rep.Code)

	rep = v.Validate("sheesham wood dining table", model.CategoryFurniture)
	assert.True(t, rep.Valid)
}

func TestValidate_UnsupportedCategory(t *testing.T) {
	v := newValidator()

	rep := v.Validate("anything", model.Category("boats"))
	require.False(t, rep.Valid)
	assert.Equal(t, model.RejectWrongCategory, rep.Code)
}

func TestValidateListing_CombinesTitleAndDescription(t *testing.T) {
	v := newValidator()

	rep := v.ValidateListing(model.Listing{
		Title:       "Samsung phone",
		Description: "Galaxy S23, 256GB, PTA approved",
		Category:    model.CategoryMobile,
	})
	assert.True(t, rep.Valid)
}
