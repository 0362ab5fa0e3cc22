package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id           TEXT PRIMARY KEY,
	external_id  TEXT UNIQUE,
	category     TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	condition    TEXT NOT NULL DEFAULT '',
	asking_price REAL NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS training_runs (
	id          TEXT PRIMARY KEY,
	category    TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	examples    INTEGER NOT NULL DEFAULT 0,
	metrics     TEXT,
	error       TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);
CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
CREATE INDEX IF NOT EXISTS idx_training_runs_category ON training_runs(category);
CREATE INDEX IF NOT EXISTS idx_training_runs_status ON training_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddListing(ctx context.Context, l model.Listing, externalID, source string) (*model.LabeledListing, error) {
	ll := model.LabeledListing{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Listing:    l,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO listings (id, external_id, category, title, description, condition, asking_price, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   category = excluded.category, title = excluded.title,
		   description = excluded.description, condition = excluded.condition,
		   asking_price = excluded.asking_price, source = excluded.source`,
		ll.ID, nullIfEmpty(externalID), string(l.Category), l.Title, l.Description,
		l.Condition, l.AskingPrice, source, ll.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert listing")
	}
	return &ll, nil
}

func (s *SQLiteStore) AddListings(ctx context.Context, ls []model.LabeledListing) (int, error) {
	if len(ls) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin batch insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings (id, external_id, category, title, description, condition, asking_price, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   category = excluded.category, title = excluded.title,
		   description = excluded.description, condition = excluded.condition,
		   asking_price = excluded.asking_price, source = excluded.source`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare batch insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var n int
	for _, ll := range ls {
		id := ll.ID
		if id == "" {
			id = uuid.New().String()
		}
		created := ll.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := stmt.ExecContext(ctx,
			id, nullIfEmpty(ll.ExternalID), string(ll.Listing.Category), ll.Listing.Title,
			ll.Listing.Description, ll.Listing.Condition, ll.Listing.AskingPrice,
			ll.Source, created,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: batch insert listing %s", id)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit batch insert")
	}
	return n, nil
}

func (s *SQLiteStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.LabeledListing, error) {
	query := `SELECT id, external_id, category, title, description, condition, asking_price, source, created_at
	          FROM listings WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list listings")
	}
	defer rows.Close()

	var out []model.LabeledListing
	for rows.Next() {
		ll, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ll)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list listings iterate")
}

func (s *SQLiteStore) CountListings(ctx context.Context, c model.Category) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE category = ?`, string(c),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count listings")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, c model.Category) (*model.TrainingRun, error) {
	run := model.TrainingRun{
		ID:        uuid.New().String(),
		Category:  c,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, category, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(c), string(run.Status), run.StartedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert training run")
	}
	return &run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, examples int, metrics map[string]float64) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metrics")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE training_runs SET status = ?, examples = ?, metrics = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), examples, string(metricsJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "training run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE training_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "training run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error) {
	query := `SELECT id, category, status, examples, metrics, error, started_at, finished_at
	          FROM training_runs WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.TrainingRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanListing(row scannable) (*model.LabeledListing, error) {
	var ll model.LabeledListing
	var externalID sql.NullString
	var category string

	err := row.Scan(&ll.ID, &externalID, &category, &ll.Listing.Title, &ll.Listing.Description,
		&ll.Listing.Condition, &ll.Listing.AskingPrice, &ll.Source, &ll.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan listing")
	}
	ll.ExternalID = externalID.String
	ll.Listing.Category = model.Category(category)
	return &ll, nil
}

func scanRun(row scannable) (*model.TrainingRun, error) {
	var r model.TrainingRun
	var category string
	var metricsJSON, errMsg sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&r.ID, &category, &r.Status, &r.Examples, &metricsJSON, &errMsg, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Category = model.Category(category)
	r.Error = errMsg.String
	if metricsJSON.Valid && metricsJSON.String != "" {
		if err := json.Unmarshal([]byte(metricsJSON.String), &r.Metrics); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal metrics")
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
