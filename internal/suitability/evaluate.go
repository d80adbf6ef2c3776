// Package suitability thresholds indicator fields into three-valued masks
// and combines per-indicator masks into a composite layer.
package suitability

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// ErrInvertedBounds reports a range whose lower bound exceeds its upper bound.
var ErrInvertedBounds = eris.New("suitability: lower bound exceeds upper bound")

// EvaluateRange returns a mask that is true where lower <= value <= upper.
// No-data cells stay no-data.
func EvaluateRange(f *raster.Field, lower, upper float64) (*raster.Mask, error) {
	if lower > upper {
		return nil, eris.Wrapf(ErrInvertedBounds, "range [%v, %v]", lower, upper)
	}
	return evaluate(f, func(v float64) bool { return v >= lower && v <= upper }), nil
}

// EvaluateMin returns a mask that is true where value >= threshold.
func EvaluateMin(f *raster.Field, threshold float64) *raster.Mask {
	return evaluate(f, func(v float64) bool { return v >= threshold })
}

// EvaluateMax returns a mask that is true where value <= threshold.
func EvaluateMax(f *raster.Field, threshold float64) *raster.Mask {
	return evaluate(f, func(v float64) bool { return v <= threshold })
}

// EvaluateSet returns a mask that is true where the cell's categorical code
// is in the allow-list. Codes not in the list, including unmapped ones, are
// false; no-data cells stay no-data.
func EvaluateSet(f *raster.Field, allowed []int) *raster.Mask {
	set := make(map[int]bool, len(allowed))
	for _, c := range allowed {
		set[c] = true
	}
	return evaluate(f, func(v float64) bool { return set[int(v)] })
}

func evaluate(f *raster.Field, pred func(v float64) bool) *raster.Mask {
	m := raster.NewMask(f.Grid)
	for i, v := range f.Values {
		if math.IsNaN(v) {
			continue // stays TriNoData
		}
		if pred(v) {
			m.Cells[i] = raster.TriTrue
		} else {
			m.Cells[i] = raster.TriFalse
		}
	}
	return m
}
