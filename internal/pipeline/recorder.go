package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/store"
)

// Recorder persists run state transitions and summaries. A nil store turns
// every method into a no-op so dry runs need no database.
type Recorder struct {
	store store.Store
}

// Begin creates the run row and marks it running.
func (r *Recorder) Begin(ctx context.Context, regionName string, year int) (*model.Run, error) {
	if r.store == nil {
		return &model.Run{Region: regionName, Year: year, Status: model.RunStatusRunning}, nil
	}
	run, err := r.store.CreateRun(ctx, regionName, year)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	if err := r.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning, ""); err != nil {
		return nil, eris.Wrap(err, "pipeline: mark run running")
	}
	run.Status = model.RunStatusRunning
	return run, nil
}

// Fail marks the run failed with the error message. Persistence failures are
// logged, not returned, so the original pipeline error stays primary.
func (r *Recorder) Fail(ctx context.Context, run *model.Run, cause error) {
	run.Status = model.RunStatusFailed
	run.Error = cause.Error()
	if r.store == nil {
		return
	}
	if err := r.store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed, cause.Error()); err != nil {
		zap.L().Error("failed to record run failure",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}

// Complete stores every summary row and marks the run completed.
func (r *Recorder) Complete(ctx context.Context, run *model.Run, res *Result) error {
	run.Status = model.RunStatusCompleted
	for i := range res.Summaries {
		res.Summaries[i].RunID = run.ID
	}
	if r.store == nil {
		return nil
	}
	for _, sm := range res.Summaries {
		if err := r.store.SaveSummary(ctx, sm); err != nil {
			return eris.Wrapf(err, "pipeline: save summary %s", sm.Indicator)
		}
	}
	if err := r.store.UpdateRunStatus(ctx, run.ID, model.RunStatusCompleted, ""); err != nil {
		return eris.Wrap(err, "pipeline: mark run completed")
	}
	return nil
}
