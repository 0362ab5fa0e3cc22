package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bazario-group/pricing-cli/internal/db"
	"github.com/bazario-group/pricing-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wires an existing pool, used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	external_id  TEXT UNIQUE,
	category     TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	condition    TEXT NOT NULL DEFAULT '',
	asking_price DOUBLE PRECISION NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS training_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	category    TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	examples    INTEGER NOT NULL DEFAULT 0,
	metrics     JSONB,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);
CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
CREATE INDEX IF NOT EXISTS idx_training_runs_category ON training_runs(category);
CREATE INDEX IF NOT EXISTS idx_training_runs_status ON training_runs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AddListing(ctx context.Context, l model.Listing, externalID, source string) (*model.LabeledListing, error) {
	ll := model.LabeledListing{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Listing:    l,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (id, external_id, category, title, description, condition, asking_price, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (external_id) DO UPDATE SET
		   category = EXCLUDED.category, title = EXCLUDED.title,
		   description = EXCLUDED.description, condition = EXCLUDED.condition,
		   asking_price = EXCLUDED.asking_price, source = EXCLUDED.source`,
		ll.ID, nullIfEmpty(externalID), string(l.Category), l.Title, l.Description,
		l.Condition, l.AskingPrice, source, ll.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert listing")
	}
	return &ll, nil
}

// AddListings bulk-loads the corpus. Rows with an external ID go through
// BulkUpsert so re-imports refresh in place; the rest go through COPY.
func (s *PostgresStore) AddListings(ctx context.Context, ls []model.LabeledListing) (int, error) {
	if len(ls) == 0 {
		return 0, nil
	}
	columns := []string{"id", "external_id", "category", "title", "description", "condition", "asking_price", "source", "created_at"}

	now := time.Now().UTC()
	var plain, keyed [][]any
	for _, ll := range ls {
		id := ll.ID
		if id == "" {
			id = uuid.New().String()
		}
		created := ll.CreatedAt
		if created.IsZero() {
			created = now
		}
		row := []any{
			id, nullIfEmpty(ll.ExternalID), string(ll.Listing.Category), ll.Listing.Title,
			ll.Listing.Description, ll.Listing.Condition, ll.Listing.AskingPrice,
			ll.Source, created,
		}
		if ll.ExternalID != "" {
			keyed = append(keyed, row)
		} else {
			plain = append(plain, row)
		}
	}

	var n int64
	if len(plain) > 0 {
		c, err := db.CopyFrom(ctx, s.pool, "listings", columns, plain)
		if err != nil {
			return int(n), eris.Wrap(err, "postgres: bulk insert listings")
		}
		n += c
	}
	if len(keyed) > 0 {
		c, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
			Table:        "listings",
			Columns:      columns,
			ConflictKeys: []string{"external_id"},
			UpdateCols:   []string{"category", "title", "description", "condition", "asking_price", "source"},
		}, keyed)
		if err != nil {
			return int(n), eris.Wrap(err, "postgres: bulk upsert listings")
		}
		n += c
	}
	return int(n), nil
}

func (s *PostgresStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.LabeledListing, error) {
	query := `SELECT id, external_id, category, title, description, condition, asking_price, source, created_at
	          FROM listings WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Category != "" {
		query += ` AND category = ` + arg(string(filter.Category))
	}
	if filter.Source != "" {
		query += ` AND source = ` + arg(filter.Source)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()

	var out []model.LabeledListing
	for rows.Next() {
		ll, err := scanPgListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ll)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list listings iterate")
}

func (s *PostgresStore) CountListings(ctx context.Context, c model.Category) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE category = $1`, string(c),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count listings")
}

func (s *PostgresStore) CreateRun(ctx context.Context, c model.Category) (*model.TrainingRun, error) {
	run := model.TrainingRun{
		ID:        uuid.New().String(),
		Category:  c,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO training_runs (id, category, status, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, string(c), string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert training run")
	}
	return &run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, examples int, metrics map[string]float64) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metrics")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE training_runs SET status = $1, examples = $2, metrics = $3, finished_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), examples, metricsJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("training run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE training_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("training run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error) {
	query := `SELECT id, category, status, examples, metrics, error, started_at, finished_at
	          FROM training_runs WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Category != "" {
		query += ` AND category = ` + arg(string(filter.Category))
	}
	if filter.Status != "" {
		query += ` AND status = ` + arg(string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.TrainingRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// helpers

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func scanPgListing(rows pgx.Rows) (*model.LabeledListing, error) {
	var ll model.LabeledListing
	var externalID *string
	var category string

	err := rows.Scan(&ll.ID, &externalID, &category, &ll.Listing.Title, &ll.Listing.Description,
		&ll.Listing.Condition, &ll.Listing.AskingPrice, &ll.Source, &ll.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan listing")
	}
	if externalID != nil {
		ll.ExternalID = *externalID
	}
	ll.Listing.Category = model.Category(category)
	return &ll, nil
}

func scanPgRun(rows pgx.Rows) (*model.TrainingRun, error) {
	var r model.TrainingRun
	var category string
	var metricsJSON []byte
	var errMsg *string
	var finishedAt *time.Time

	err := rows.Scan(&r.ID, &category, &r.Status, &r.Examples, &metricsJSON, &errMsg, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	r.Category = model.Category(category)
	if errMsg != nil {
		r.Error = *errMsg
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &r.Metrics); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal metrics")
		}
	}
	r.FinishedAt = finishedAt
	return &r, nil
}
