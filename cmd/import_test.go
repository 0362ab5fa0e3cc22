package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/model"
)

func TestParseListingsCSV(t *testing.T) {
	csv := `external_id,category,title,description,condition,price
olx-1,mobile,iPhone 13 128GB,like new,used,950
olx-2,laptop,Dell Inspiron i5,,used,420
,furniture,sheesham bed,solid wood,,300
`
	out, skipped, err := parseListingsCSV(strings.NewReader(csv), "olx")
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, out, 3)

	assert.Equal(t, "olx-1", out[0].ExternalID)
	assert.Equal(t, model.CategoryMobile, out[0].Listing.Category)
	assert.Equal(t, 950.0, out[0].Listing.AskingPrice)
	assert.Equal(t, "olx", out[0].Source)
	assert.Empty(t, out[2].ExternalID)
}

func TestParseListingsCSVSkipsBadRows(t *testing.T) {
	csv := `category,title,price
mobile,iPhone 13,900
boats,yacht,100000
mobile,,100
mobile,Galaxy S22,not-a-price
mobile,Pixel 8,-5
`
	out, skipped, err := parseListingsCSV(strings.NewReader(csv), "csv")
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 4, skipped)
}

func TestParseListingsCSVMissingColumn(t *testing.T) {
	csv := `category,title
mobile,iPhone 13
`
	_, _, err := parseListingsCSV(strings.NewReader(csv), "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "price"`)
}

func TestResolveCategories(t *testing.T) {
	all, err := resolveCategories(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := resolveCategories([]string{"mobile", "furniture"})
	require.NoError(t, err)
	assert.Equal(t, []model.Category{model.CategoryMobile, model.CategoryFurniture}, two)

	_, err = resolveCategories([]string{"boats"})
	assert.Error(t, err)
}
