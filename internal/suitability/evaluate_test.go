package suitability

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

func grid(cols, rows int) raster.Grid {
	return raster.Grid{Cols: cols, Rows: rows, MinX: 20, MinY: 41, CellSize: 0.01, SRID: 4326}
}

func field(t *testing.T, g raster.Grid, vals ...float64) *raster.Field {
	t.Helper()
	f, err := raster.FromValues(g, "", vals)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestEvaluateRange_TruthTable(t *testing.T) {
	g := grid(5, 1)
	f := field(t, g, 13.9, 14.1, 15.0, 15.5, 15.6)

	m, err := EvaluateRange(f, 14.1, 15.5)
	if err != nil {
		t.Fatal(err)
	}
	want := []raster.Tri{raster.TriFalse, raster.TriTrue, raster.TriTrue, raster.TriTrue, raster.TriFalse}
	for i, w := range want {
		if m.Cells[i] != w {
			t.Errorf("cell %d (value %v): got %s, want %s", i, f.Values[i], m.Cells[i], w)
		}
	}
}

func TestEvaluateRange_NoDataStaysNoData(t *testing.T) {
	f := field(t, grid(1, 1), math.NaN())
	m, err := EvaluateRange(f, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if m.Cells[0] != raster.TriNoData {
		t.Errorf("no-data pixel classified as %s", m.Cells[0])
	}
}

func TestEvaluateRange_InvertedBounds(t *testing.T) {
	f := field(t, grid(1, 1), 5)
	_, err := EvaluateRange(f, 10, 1)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !eris.Is(err, ErrInvertedBounds) {
		t.Errorf("error chain should carry ErrInvertedBounds: %v", err)
	}
}

func TestEvaluateMinMax(t *testing.T) {
	g := grid(3, 1)
	f := field(t, g, 2500, 2700, 2900)

	minMask := EvaluateMin(f, 2700)
	if minMask.Cells[0] != raster.TriFalse || minMask.Cells[1] != raster.TriTrue || minMask.Cells[2] != raster.TriTrue {
		t.Errorf("EvaluateMin: got %v", minMask.Cells)
	}

	maxMask := EvaluateMax(f, 2700)
	if maxMask.Cells[0] != raster.TriTrue || maxMask.Cells[1] != raster.TriTrue || maxMask.Cells[2] != raster.TriFalse {
		t.Errorf("EvaluateMax: got %v", maxMask.Cells)
	}
}

func TestEvaluateSet_IsAllowListIndicator(t *testing.T) {
	allowed := []int{1, 2, 3, 4, 5, 6, 7, 10, 12}
	g := grid(4, 1)
	f := field(t, g, 8, 10, 12, math.NaN())

	m := EvaluateSet(f, allowed)
	if m.Cells[0] != raster.TriFalse {
		t.Errorf("code 8: got %s, want false", m.Cells[0])
	}
	if m.Cells[1] != raster.TriTrue {
		t.Errorf("code 10: got %s, want true", m.Cells[1])
	}
	if m.Cells[2] != raster.TriTrue {
		t.Errorf("code 12: got %s, want true", m.Cells[2])
	}
	if m.Cells[3] != raster.TriNoData {
		t.Errorf("no-data code: got %s, want nodata", m.Cells[3])
	}
}
