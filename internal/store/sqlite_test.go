package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitisgeo/terroir-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "Kosovo", 2024)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning, ""))
	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusCompleted, ""))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.Equal(t, "Kosovo", got.Region)
	assert.Equal(t, 2024, got.Year)
	assert.Empty(t, got.Error)
}

func TestSQLiteStore_FailedRunKeepsError(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "Kosovo", 2024)
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed, "platform unreachable"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "platform unreachable", got.Error)
}

func TestSQLiteStore_UpdateMissingRun(t *testing.T) {
	s := newTestSQLite(t)
	err := s.UpdateRunStatus(context.Background(), "no-such-run", model.RunStatusRunning, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_Summaries(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "Kosovo", 2024)
	require.NoError(t, err)

	sm := model.IndicatorSummary{
		RunID:       run.ID,
		Indicator:   "gst",
		Unit:        "°C",
		Min:         13.9,
		Max:         15.8,
		Mean:        14.8,
		CellsTrue:   120,
		CellsFalse:  60,
		CellsNoData: 5,
		Thresholds:  `{"lower":14.1,"upper":15.5}`,
	}
	require.NoError(t, s.SaveSummary(ctx, sm))

	// Saving again replaces the row instead of duplicating it.
	sm.Mean = 15.0
	require.NoError(t, s.SaveSummary(ctx, sm))

	got, err := s.ListSummaries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 15.0, got[0].Mean, 0.001)
	assert.Equal(t, `{"lower":14.1,"upper":15.5}`, got[0].Thresholds)
	assert.InDelta(t, float64(120)/float64(180), got[0].SuitableFraction(), 0.001)
}

func TestSQLiteStore_ListRunsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "Kosovo", 2024)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "Testland", 2023)
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunStatusCompleted, ""))

	completed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a.ID, completed[0].ID)

	byRegion, err := s.ListRuns(ctx, RunFilter{Region: "Testland"})
	require.NoError(t, err)
	require.Len(t, byRegion, 1)
	assert.Equal(t, "Testland", byRegion[0].Region)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
}
