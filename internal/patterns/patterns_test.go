package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/model"
)

func TestLookupBrand_LongestFirst(t *testing.T) {
	lib := Default().For(model.CategoryMobile)

	// "oneplus" must win over the shorter but substring-present "plus"-free
	// brands; direct canonical hit.
	name, score := lib.LookupBrand("OnePlus 9 Pro for sale")
	assert.Equal(t, "oneplus", name)
	assert.Equal(t, 8.0, score)
}

func TestLookupBrand_AliasResolvesCanonical(t *testing.T) {
	lib := Default().For(model.CategoryMobile)

	name, score := lib.LookupBrand("Galaxy S23 Ultra")
	assert.Equal(t, "samsung", name)
	assert.Equal(t, 9.0, score)

	name, score = lib.LookupBrand("iPhone 13 128gb")
	assert.Equal(t, "apple", name)
	assert.Equal(t, 10.0, score)
}

func TestLookupBrand_UnknownDefault(t *testing.T) {
	lib := Default().For(model.CategoryLaptop)

	name, score := lib.LookupBrand("generic core machine")
	assert.Equal(t, DefaultBrand, name)
	assert.Equal(t, DefaultBrandScore, score)
}

func TestLookupCondition_LongestKeywordWins(t *testing.T) {
	lib := Default().For(model.CategoryMobile)

	// "brand new" (10) must beat the embedded "new" substring.
	score, ok := lib.LookupCondition("brand new phone")
	require.True(t, ok)
	assert.Equal(t, 10.0, score)
}

func TestProcessorFamily_TierBuckets(t *testing.T) {
	lib := Default().For(model.CategoryLaptop)

	var rtx ProcessorFamily
	for _, f := range lib.GPUFamilies {
		if f.Name == "nvidia_rtx" {
			rtx = f
		}
	}
	require.NotNil(t, rtx.Pattern)

	assert.Equal(t, 9.0, rtx.Tier(4070))
	assert.Equal(t, 8.0, rtx.Tier(3060))
	assert.Equal(t, 6.0, rtx.Tier(2050))
	// out of every bucket: base tier
	assert.Equal(t, rtx.BaseTier, rtx.Tier(999))
}

func TestDefaultPrecedence_IntelBeforeAMD_RTXBeforeGTX(t *testing.T) {
	lib := Default().For(model.CategoryLaptop)

	assert.Equal(t, "intel_core", lib.CPUFamilies[0].Name)
	assert.Equal(t, "nvidia_rtx", lib.GPUFamilies[0].Name)
}

func TestLoadOverrides_ReordersFamilies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "precedence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  laptop:
    cpu: [amd_ryzen]
    gpu: [nvidia_gtx, nvidia_rtx]
`), 0o644))

	set := Default()
	require.NoError(t, set.LoadOverrides(path))

	lib := set.For(model.CategoryLaptop)
	assert.Equal(t, "amd_ryzen", lib.CPUFamilies[0].Name)
	assert.Equal(t, "nvidia_gtx", lib.GPUFamilies[0].Name)
	assert.Equal(t, "nvidia_rtx", lib.GPUFamilies[1].Name)
}

func TestLoadOverrides_UnknownFamilyFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "precedence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  laptop:
    cpu: [quantum_cpu]
`), 0o644))

	err := Default().LoadOverrides(path)
	assert.Error(t, err)
}

func TestLoadOverrides_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, Default().LoadOverrides("/nonexistent/precedence.yaml"))
}

func TestIsGenericModelTerm(t *testing.T) {
	assert.True(t, IsGenericModelTerm("Pro"))
	assert.True(t, IsGenericModelTerm("ultra"))
	assert.False(t, IsGenericModelTerm("inspiron"))
}

func TestFurnitureLibrary_MaterialLookup(t *testing.T) {
	lib := Default().For(model.CategoryFurniture)

	// "solid wood" must beat the embedded "wood".
	score, ok := lib.LookupMaterial("solid wood dining table")
	require.True(t, ok)
	assert.Equal(t, 9.0, score)

	_, ok = lib.LookupMaterial("no material here")
	assert.False(t, ok)
}
