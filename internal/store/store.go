package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// ListingFilter specifies criteria for reading the training corpus.
type ListingFilter struct {
	Category model.Category `json:"category,omitempty"`
	Source   string         `json:"source,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// RunFilter specifies criteria for listing training runs.
type RunFilter struct {
	Category model.Category  `json:"category,omitempty"`
	Status   model.RunStatus `json:"status,omitempty"`
	Limit    int             `json:"limit,omitempty"`
}

// Store defines persistence for the pricing pipeline: the labeled
// listing corpus models train on, and the training-run journal.
type Store interface {
	// Corpus
	AddListing(ctx context.Context, l model.Listing, externalID, source string) (*model.LabeledListing, error)
	AddListings(ctx context.Context, ls []model.LabeledListing) (int, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]model.LabeledListing, error)
	CountListings(ctx context.Context, c model.Category) (int, error)

	// Run journal
	CreateRun(ctx context.Context, c model.Category) (*model.TrainingRun, error)
	CompleteRun(ctx context.Context, runID string, examples int, metrics map[string]float64) error
	FailRun(ctx context.Context, runID string, reason string) error
	ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open dispatches on the configured driver. SQLite is the default,
// zero-setup path; Postgres serves shared deployments.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
