package raster

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Map applies fn to every valid cell of f and returns a new field. No-data
// cells stay no-data; fn never sees them.
func Map(f *Field, unit string, fn func(v float64) float64) *Field {
	out := NewField(f.Grid, unit)
	for i, v := range f.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values[i] = fn(v)
	}
	return out
}

// Zip combines two fields cell-wise. Both fields must share a grid. A cell is
// no-data in the result when it is no-data in either input.
func Zip(a, b *Field, unit string, fn func(av, bv float64) float64) (*Field, error) {
	if !a.Grid.Equal(b.Grid) {
		return nil, eris.New("raster: zip over mismatched grids")
	}
	out := NewField(a.Grid, unit)
	for i := range a.Values {
		av, bv := a.Values[i], b.Values[i]
		if math.IsNaN(av) || math.IsNaN(bv) {
			continue
		}
		out.Values[i] = fn(av, bv)
	}
	return out, nil
}

// NormalizedDifference computes (a-b)/(a+b) cell-wise. Cells where the
// denominator is zero become no-data rather than ±Inf.
func NormalizedDifference(a, b *Field) (*Field, error) {
	return Zip(a, b, "index", func(av, bv float64) float64 {
		den := av + bv
		if den == 0 {
			return math.NaN()
		}
		return (av - bv) / den
	})
}

func checkStack(fields []*Field) error {
	if len(fields) == 0 {
		return eris.New("raster: aggregate over empty stack")
	}
	g := fields[0].Grid
	for _, f := range fields[1:] {
		if !f.Grid.Equal(g) {
			return eris.New("raster: aggregate over mismatched grids")
		}
	}
	return nil
}

// MeanOf computes the per-pixel arithmetic mean of a temporal stack. Missing
// snapshots are skipped per pixel; a pixel missing from every snapshot stays
// no-data.
func MeanOf(fields []*Field, unit string) (*Field, error) {
	if err := checkStack(fields); err != nil {
		return nil, err
	}
	out := NewField(fields[0].Grid, unit)
	for i := range out.Values {
		var sum float64
		var n int
		for _, f := range fields {
			if v := f.Values[i]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			out.Values[i] = sum / float64(n)
		}
	}
	return out, nil
}

// SumOf computes the per-pixel sum of a temporal stack. A pixel missing from
// every snapshot stays no-data; sum-of-none is not coerced to zero.
func SumOf(fields []*Field, unit string) (*Field, error) {
	if err := checkStack(fields); err != nil {
		return nil, err
	}
	out := NewField(fields[0].Grid, unit)
	for i := range out.Values {
		var sum float64
		var n int
		for _, f := range fields {
			if v := f.Values[i]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			out.Values[i] = sum
		}
	}
	return out, nil
}

// MedianOf computes the per-pixel median of a temporal stack. Median rather
// than mean keeps cloud-contaminated outlier scenes from skewing composites.
func MedianOf(fields []*Field, unit string) (*Field, error) {
	if err := checkStack(fields); err != nil {
		return nil, err
	}
	out := NewField(fields[0].Grid, unit)
	buf := make([]float64, 0, len(fields))
	for i := range out.Values {
		buf = buf[:0]
		for _, f := range fields {
			if v := f.Values[i]; !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			continue
		}
		sort.Float64s(buf)
		mid := len(buf) / 2
		if len(buf)%2 == 1 {
			out.Values[i] = buf[mid]
		} else {
			out.Values[i] = (buf[mid-1] + buf[mid]) / 2
		}
	}
	return out, nil
}

// CountOf computes, per pixel, how many snapshots satisfy pred. Pixels with
// no valid snapshot at all stay no-data; otherwise the count includes only
// valid snapshots.
func CountOf(fields []*Field, unit string, pred func(v float64) bool) (*Field, error) {
	if err := checkStack(fields); err != nil {
		return nil, err
	}
	out := NewField(fields[0].Grid, unit)
	for i := range out.Values {
		var count, valid int
		for _, f := range fields {
			if v := f.Values[i]; !math.IsNaN(v) {
				valid++
				if pred(v) {
					count++
				}
			}
		}
		if valid > 0 {
			out.Values[i] = float64(count)
		}
	}
	return out, nil
}
