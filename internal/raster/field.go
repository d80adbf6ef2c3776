// Package raster provides the pixel-aligned grid, field, and mask types that
// every indicator pipeline computes over. Fields are flat row-major float64
// slices; no-data is represented as NaN and propagates through all arithmetic.
package raster

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// Grid describes a regular geographic grid. All fields derived from the same
// source collection share one Grid, so per-pixel operations can zip slices
// directly without resampling.
type Grid struct {
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	MinX     float64 `json:"min_x"`
	MinY     float64 `json:"min_y"`
	CellSize float64 `json:"cell_size"`
	SRID     int     `json:"srid"`
}

// Equal reports whether two grids describe the same pixel layout.
func (g Grid) Equal(o Grid) bool {
	return g.Cols == o.Cols && g.Rows == o.Rows &&
		g.MinX == o.MinX && g.MinY == o.MinY &&
		g.CellSize == o.CellSize && g.SRID == o.SRID
}

// Size returns the number of cells in the grid.
func (g Grid) Size() int { return g.Cols * g.Rows }

// String renders the grid shape for error messages.
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d@%g (%g,%g) srid=%d", g.Cols, g.Rows, g.CellSize, g.MinX, g.MinY, g.SRID)
}

// CellCenter returns the geographic center of cell (col, row). Row 0 is the
// northernmost row, matching raster export order.
func (g Grid) CellCenter(col, row int) (x, y float64) {
	x = g.MinX + (float64(col)+0.5)*g.CellSize
	y = g.MinY + (float64(g.Rows-1-row)+0.5)*g.CellSize
	return x, y
}

// Field is a per-pixel scalar quantity on a Grid. Values holds Rows*Cols
// samples in row-major order; NaN marks no-data.
type Field struct {
	Grid   Grid
	Unit   string
	Values []float64
}

// NewField allocates a field on g with every cell set to no-data.
func NewField(g Grid, unit string) *Field {
	vals := make([]float64, g.Size())
	for i := range vals {
		vals[i] = math.NaN()
	}
	return &Field{Grid: g, Unit: unit, Values: vals}
}

// FromValues wraps an existing sample slice as a field. The slice length must
// match the grid size.
func FromValues(g Grid, unit string, values []float64) (*Field, error) {
	if len(values) != g.Size() {
		return nil, eris.Errorf("raster: field has %d values, grid wants %d", len(values), g.Size())
	}
	return &Field{Grid: g, Unit: unit, Values: values}, nil
}

// At returns the value at (col, row).
func (f *Field) At(col, row int) float64 {
	return f.Values[row*f.Grid.Cols+col]
}

// Set writes the value at (col, row).
func (f *Field) Set(col, row int, v float64) {
	f.Values[row*f.Grid.Cols+col] = v
}

// IsNoData reports whether cell i holds no-data.
func (f *Field) IsNoData(i int) bool { return math.IsNaN(f.Values[i]) }

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	vals := make([]float64, len(f.Values))
	copy(vals, f.Values)
	return &Field{Grid: f.Grid, Unit: f.Unit, Values: vals}
}

// Clip sets cells for which keep returns false to no-data. keep receives the
// geographic center of each cell. The field is modified in place.
func (f *Field) Clip(keep func(x, y float64) bool) {
	for row := 0; row < f.Grid.Rows; row++ {
		for col := 0; col < f.Grid.Cols; col++ {
			x, y := f.Grid.CellCenter(col, row)
			if !keep(x, y) {
				f.Set(col, row, math.NaN())
			}
		}
	}
}

// Stats summarizes the valid cells of a field.
type Stats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Summarize computes stats over the valid (non-NaN) cells. A field with no
// valid cells yields Count 0 and NaN min/max/mean.
func (f *Field) Summarize() Stats {
	st := Stats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	var sum float64
	for _, v := range f.Values {
		if math.IsNaN(v) {
			continue
		}
		if st.Count == 0 {
			st.Min, st.Max = v, v
		} else {
			st.Min = math.Min(st.Min, v)
			st.Max = math.Max(st.Max, v)
		}
		sum += v
		st.Count++
	}
	if st.Count > 0 {
		st.Mean = sum / float64(st.Count)
	}
	return st
}
