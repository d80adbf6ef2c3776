package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/vitisgeo/terroir-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	region     TEXT NOT NULL,
	year       INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS indicator_summaries (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	indicator    TEXT NOT NULL,
	unit         TEXT NOT NULL DEFAULT '',
	min          REAL NOT NULL,
	max          REAL NOT NULL,
	mean         REAL NOT NULL,
	cells_true   INTEGER NOT NULL,
	cells_false  INTEGER NOT NULL,
	cells_nodata INTEGER NOT NULL,
	thresholds   TEXT NOT NULL DEFAULT '{}',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, indicator)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_region ON runs(region);
CREATE INDEX IF NOT EXISTS idx_summaries_run_id ON indicator_summaries(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, region string, year int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, region, year, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, region, year, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, region, year, status, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, region, year, status, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Region != "" {
		query += ` AND region = ?`
		args = append(args, filter.Region)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveSummary(ctx context.Context, summary model.IndicatorSummary) error {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO indicator_summaries
		 (run_id, indicator, unit, min, max, mean, cells_true, cells_false, cells_nodata, thresholds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, indicator) DO UPDATE SET
		   unit = excluded.unit, min = excluded.min, max = excluded.max, mean = excluded.mean,
		   cells_true = excluded.cells_true, cells_false = excluded.cells_false,
		   cells_nodata = excluded.cells_nodata, thresholds = excluded.thresholds`,
		summary.RunID, summary.Indicator, summary.Unit,
		summary.Min, summary.Max, summary.Mean,
		summary.CellsTrue, summary.CellsFalse, summary.CellsNoData,
		summary.Thresholds, summary.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save summary %s/%s", summary.RunID, summary.Indicator)
}

func (s *SQLiteStore) ListSummaries(ctx context.Context, runID string) ([]model.IndicatorSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, indicator, unit, min, max, mean, cells_true, cells_false, cells_nodata, thresholds, created_at
		 FROM indicator_summaries WHERE run_id = ? ORDER BY indicator`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list summaries %s", runID)
	}
	defer rows.Close()

	var summaries []model.IndicatorSummary
	for rows.Next() {
		var sm model.IndicatorSummary
		if err := rows.Scan(&sm.RunID, &sm.Indicator, &sm.Unit,
			&sm.Min, &sm.Max, &sm.Mean,
			&sm.CellsTrue, &sm.CellsFalse, &sm.CellsNoData,
			&sm.Thresholds, &sm.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		summaries = append(summaries, sm)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list summaries iterate")
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

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var runErr sql.NullString

	err := row.Scan(&r.ID, &r.Region, &r.Year, &r.Status, &runErr, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if runErr.Valid {
		r.Error = runErr.String
	}
	return &r, nil
}
