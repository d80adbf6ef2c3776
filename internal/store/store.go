// Package store persists pipeline runs and their indicator summaries.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/model"
)

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status model.RunStatus
	Region string
	Limit  int
	Offset int
}

// Store is the persistence interface shared by the SQLite and Postgres
// backends.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	CreateRun(ctx context.Context, region string, year int) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, runErr string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	SaveSummary(ctx context.Context, summary model.IndicatorSummary) error
	ListSummaries(ctx context.Context, runID string) ([]model.IndicatorSummary, error)
}

// Open constructs the backend named by driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
