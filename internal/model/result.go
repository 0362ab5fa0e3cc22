package model

// RejectCode identifies why the consistency validator rejected a listing.
// Codes are stable machine-readable identifiers; Reason carries the
// user-facing message surfaced verbatim to the submitter.
type RejectCode string

const (
	RejectMissingBrand      RejectCode = "missing_brand"
	RejectBrandConflict     RejectCode = "brand_model_conflict"
	RejectInsufficientModel RejectCode = "insufficient_model_info"
	RejectWrongCategory     RejectCode = "wrong_category"
)

// ConflictReport is the outcome of consistency validation. It is an
// accept/reject gate plus a user-facing explanation; it is never persisted.
type ConflictReport struct {
	Valid              bool       `json:"valid"`
	Code               RejectCode `json:"code,omitempty"`
	Reason             string     `json:"reason,omitempty"`
	MatchedBrand       string     `json:"matched_brand,omitempty"`
	ConflictingKeyword string     `json:"conflicting_keyword,omitempty"`
}

// Accept returns a passing report for the given brand.
func Accept(brand string) ConflictReport {
	return ConflictReport{Valid: true, MatchedBrand: brand}
}

// Reject returns a failing report.
func Reject(code RejectCode, reason string) ConflictReport {
	return ConflictReport{Valid: false, Code: code, Reason: reason}
}

// ConfidenceTier is the coarse confidence classification of a prediction,
// driven by how much of the key spec was genuinely extracted rather than
// filled with defaults.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// PredictionResult is the output consumed by the listing-creation workflow
// and the pricing-assistant UI.
type PredictionResult struct {
	Success         bool               `json:"success"`
	PredictedPrice  float64            `json:"predicted_price"`
	ConfidenceTier  ConfidenceTier     `json:"confidence_tier"`
	PriceRangeMin   float64            `json:"price_range_min"`
	PriceRangeMax   float64            `json:"price_range_max"`
	ExtractedFields map[string]float64 `json:"extracted_fields,omitempty"`

	// Deviation is (asking - predicted) / predicted when the listing
	// carried an asking price, used to flag sharply mispriced listings.
	Deviation *float64 `json:"deviation,omitempty"`
}

// TrainingExample pairs an engineered feature vector with its observed
// sale price. Examples pass through the outlier filter before training.
type TrainingExample struct {
	Features []float64 `json:"features"`
	Price    float64   `json:"price"`
}
