package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, region, year, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_run_status": `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, region, year, status, error, created_at, updated_at FROM runs WHERE id = $1`,
	"list_summaries":    `SELECT run_id, indicator, unit, min, max, mean, cells_true, cells_false, cells_nodata, thresholds, created_at FROM indicator_summaries WHERE run_id = $1 ORDER BY indicator`,
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

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	region     TEXT NOT NULL,
	year       INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS indicator_summaries (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	indicator    TEXT NOT NULL,
	unit         TEXT NOT NULL DEFAULT '',
	min          DOUBLE PRECISION NOT NULL,
	max          DOUBLE PRECISION NOT NULL,
	mean         DOUBLE PRECISION NOT NULL,
	cells_true   INTEGER NOT NULL,
	cells_false  INTEGER NOT NULL,
	cells_nodata INTEGER NOT NULL,
	thresholds   JSONB NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, indicator)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_region ON runs(region);
CREATE INDEX IF NOT EXISTS idx_summaries_run_id ON indicator_summaries(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, region string, year int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, region, year, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, region, year, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Region:    region,
		Year:      year,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, runErr string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(status), runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var runErr *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, region, year, status, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Region, &r.Year, &r.Status, &runErr, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("run not found: %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if runErr != nil {
		r.Error = *runErr
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, region, year, status, error, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Region != "" {
		query += fmt.Sprintf(` AND region = $%d`, argIdx)
		args = append(args, filter.Region)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var runErr *string
		if err := rows.Scan(&r.ID, &r.Region, &r.Year, &r.Status, &runErr, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if runErr != nil {
			r.Error = *runErr
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveSummary(ctx context.Context, summary model.IndicatorSummary) error {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}
	thresholds := summary.Thresholds
	if thresholds == "" {
		thresholds = "{}"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO indicator_summaries
		 (run_id, indicator, unit, min, max, mean, cells_true, cells_false, cells_nodata, thresholds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (run_id, indicator) DO UPDATE SET
		   unit = $3, min = $4, max = $5, mean = $6,
		   cells_true = $7, cells_false = $8, cells_nodata = $9, thresholds = $10`,
		summary.RunID, summary.Indicator, summary.Unit,
		summary.Min, summary.Max, summary.Mean,
		summary.CellsTrue, summary.CellsFalse, summary.CellsNoData,
		thresholds, summary.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save summary %s/%s", summary.RunID, summary.Indicator)
}

func (s *PostgresStore) ListSummaries(ctx context.Context, runID string) ([]model.IndicatorSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, indicator, unit, min, max, mean, cells_true, cells_false, cells_nodata, thresholds, created_at
		 FROM indicator_summaries WHERE run_id = $1 ORDER BY indicator`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list summaries %s", runID)
	}
	defer rows.Close()

	var summaries []model.IndicatorSummary
	for rows.Next() {
		var sm model.IndicatorSummary
		if err := rows.Scan(&sm.RunID, &sm.Indicator, &sm.Unit,
			&sm.Min, &sm.Max, &sm.Mean,
			&sm.CellsTrue, &sm.CellsFalse, &sm.CellsNoData,
			&sm.Thresholds, &sm.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		summaries = append(summaries, sm)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list summaries iterate")
}
