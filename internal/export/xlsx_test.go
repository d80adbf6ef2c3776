package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/pipeline"
)

func sampleRun() *model.Run {
	return &model.Run{
		ID:        "run-1",
		Region:    "Kosovo",
		Year:      2024,
		Status:    model.RunStatusCompleted,
		CreatedAt: time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC),
	}
}

func sampleSummaries() []model.IndicatorSummary {
	return []model.IndicatorSummary{
		{Indicator: "gst", Unit: "°C", Min: 13.9, Max: 15.8, Mean: 14.8,
			CellsTrue: 120, CellsFalse: 60, CellsNoData: 5,
			Thresholds: `{"lower":14.1,"upper":15.5}`},
		{Indicator: "composite", CellsTrue: 40, CellsFalse: 140, CellsNoData: 5, Thresholds: "{}"},
	}
}

func TestWorkbook_Sheets(t *testing.T) {
	f, err := Workbook(sampleRun(), sampleSummaries(), nil)
	require.NoError(t, err)

	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "Run", f.Sheets[0].Name)
	assert.Equal(t, "Summary", f.Sheets[1].Name)

	summary := f.Sheets[1]
	// Header plus one row per summary.
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "indicator", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "gst", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "composite", summary.Rows[2].Cells[0].String())

	fraction, err := summary.Rows[1].Cells[8].Float()
	require.NoError(t, err)
	assert.InDelta(t, float64(120)/float64(180), fraction, 0.001)
}

func TestWorkbook_ValidationSheet(t *testing.T) {
	capture := &pipeline.CaptureReport{Sites: 10, Captured: 8, Undecided: 1, Fraction: 8.0 / 9.0}
	f, err := Workbook(sampleRun(), sampleSummaries(), capture)
	require.NoError(t, err)

	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Validation", f.Sheets[2].Name)
	assert.Equal(t, "vineyard_sites", f.Sheets[2].Rows[0].Cells[0].String())
}

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleRun(), sampleSummaries(), nil))

	opened, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, opened.Sheets, 2)
	assert.Equal(t, "run-1", opened.Sheet["Run"].Rows[0].Cells[1].String())
}
