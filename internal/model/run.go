package model

import "time"

// RunStatus tracks a training run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// TrainingRun is the journal entry for one per-category training run.
// A failed run records its error and leaves the last-good artifact
// untouched.
type TrainingRun struct {
	ID         string             `json:"id"`
	Category   Category           `json:"category"`
	Status     RunStatus          `json:"status"`
	Examples   int                `json:"examples"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// LabeledListing is a persisted listing with its observed price, the raw
// material of the training corpus. ExternalID carries the marketplace's
// own identifier so re-imports upsert instead of duplicating.
type LabeledListing struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	Listing    Listing   `json:"listing"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
