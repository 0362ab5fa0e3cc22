package model

// ExtractedSpec is the partial specification recovered from a listing's
// free text. Every field is either a concrete value in Values or absent
// from the map entirely; the extractor never writes fabricated defaults
// for numeric fields. Created fresh per extraction call and never mutated
// afterwards.
type ExtractedSpec struct {
	Category Category `json:"category"`

	// Brand is the canonical matched brand name, "unknown" when no brand
	// vocabulary entry matched.
	Brand string `json:"brand"`

	// Values maps field name to extracted value. Boolean flags are stored
	// as 0/1 and are always present; optional numeric fields appear only
	// when a pattern matched and passed its plausibility range.
	Values map[string]float64 `json:"values"`
}

// NewExtractedSpec returns an empty spec for the given category.
func NewExtractedSpec(c Category) *ExtractedSpec {
	return &ExtractedSpec{
		Category: c,
		Brand:    "unknown",
		Values:   make(map[string]float64),
	}
}

// Set records a field value.
func (s *ExtractedSpec) Set(name string, v float64) {
	s.Values[name] = v
}

// Get returns a field value and whether it was extracted.
func (s *ExtractedSpec) Get(name string) (float64, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// Has reports whether a field was extracted.
func (s *ExtractedSpec) Has(name string) bool {
	_, ok := s.Values[name]
	return ok
}

// GetOr returns the field value or def when absent.
func (s *ExtractedSpec) GetOr(name string, def float64) float64 {
	if v, ok := s.Values[name]; ok {
		return v
	}
	return def
}
