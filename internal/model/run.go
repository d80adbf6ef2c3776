// Package model holds the run records shared by the pipeline, store, and
// server layers.
package model

import "time"

// RunStatus tracks a pipeline run's lifecycle.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the suitability pipeline over a region and year.
type Run struct {
	ID        string    `json:"id"`
	Region    string    `json:"region"`
	Year      int       `json:"year"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IndicatorSummary is the stored outcome of one indicator pipeline within a
// run: field statistics, mask tallies, and the thresholds that produced the
// mask (as JSON, for audit).
type IndicatorSummary struct {
	RunID       string    `json:"run_id"`
	Indicator   string    `json:"indicator"`
	Unit        string    `json:"unit"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Mean        float64   `json:"mean"`
	CellsTrue   int       `json:"cells_true"`
	CellsFalse  int       `json:"cells_false"`
	CellsNoData int       `json:"cells_nodata"`
	Thresholds  string    `json:"thresholds"`
	CreatedAt   time.Time `json:"created_at"`
}

// SuitableFraction returns the share of decided cells that passed.
func (s IndicatorSummary) SuitableFraction() float64 {
	decided := s.CellsTrue + s.CellsFalse
	if decided == 0 {
		return 0
	}
	return float64(s.CellsTrue) / float64(decided)
}
