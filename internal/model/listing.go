// Package model defines the core domain types shared across the pricing
// pipeline: input listings, extracted specifications, validation reports,
// and prediction results.
package model

import "strings"

// Category identifies a supported listing category. Each category carries
// its own pattern grammar, feature manifest, and trained model.
type Category string

const (
	CategoryMobile    Category = "mobile"
	CategoryLaptop    Category = "laptop"
	CategoryFurniture Category = "furniture"
)

// Categories returns all supported categories in stable order.
func Categories() []Category {
	return []Category{CategoryMobile, CategoryLaptop, CategoryFurniture}
}

// ParseCategory converts a string to a Category. Returns ("", false) for
// unknown values.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMobile:
		return CategoryMobile, true
	case CategoryLaptop:
		return CategoryLaptop, true
	case CategoryFurniture:
		return CategoryFurniture, true
	}
	return "", false
}

// Listing is the immutable raw input from the listing API layer. Only the
// title and description are guaranteed; sellers rarely fill anything else.
type Listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Condition   string   `json:"condition,omitempty"` // seller-declared, optional
	Category    Category `json:"category"`
	AskingPrice float64  `json:"asking_price,omitempty"` // 0 = not provided
}

// Text returns the combined searchable text of the listing. The title is
// included twice-weighted by position: grammar rules that prefer the first
// match naturally prefer title content.
func (l Listing) Text() string {
	if l.Description == "" {
		return l.Title
	}
	return l.Title + " " + l.Description
}
