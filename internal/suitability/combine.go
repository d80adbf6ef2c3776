package suitability

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// CombineAll intersects masks with Kleene AND: a cell is false if any input
// is false, no-data if none is false but any is missing, true otherwise.
// All masks must share one grid.
func CombineAll(masks ...*raster.Mask) (*raster.Mask, error) {
	if len(masks) == 0 {
		return nil, eris.New("suitability: combine over zero masks")
	}
	g := masks[0].Grid
	for i, m := range masks[1:] {
		if !m.Grid.Equal(g) {
			return nil, eris.Errorf("suitability: combine over mismatched grids: mask 0 is %s, mask %d is %s", g, i+1, m.Grid)
		}
	}

	out := raster.NewMask(g)
	for i := range out.Cells {
		acc := raster.TriTrue
		for _, m := range masks {
			acc = acc.And(m.Cells[i])
			if acc == raster.TriFalse {
				break
			}
		}
		out.Cells[i] = acc
	}
	return out, nil
}

// WeightedScore blends masks into a 0..1 score surface. Each true cell
// contributes its mask's weight; the score is the contributed weight divided
// by the weight of the masks that had data at that cell. Cells with no data
// in any mask stay no-data.
func WeightedScore(masks map[string]*raster.Mask, weights map[string]float64) (*raster.Field, error) {
	if len(masks) == 0 {
		return nil, eris.New("suitability: score over zero masks")
	}

	var g raster.Grid
	first := true
	for name, m := range masks {
		if first {
			g = m.Grid
			first = false
		} else if !m.Grid.Equal(g) {
			return nil, eris.Errorf("suitability: mask %q on a different grid", name)
		}
		if w, ok := weights[name]; ok && w < 0 {
			return nil, eris.Errorf("suitability: negative weight for %q", name)
		}
	}

	weightOf := func(name string) float64 {
		if w, ok := weights[name]; ok {
			return w
		}
		return 1.0
	}

	out := raster.NewField(g, "score")
	for i := range out.Values {
		var got, avail float64
		for name, m := range masks {
			w := weightOf(name)
			switch m.Cells[i] {
			case raster.TriTrue:
				got += w
				avail += w
			case raster.TriFalse:
				avail += w
			}
		}
		if avail > 0 {
			out.Values[i] = got / avail
		} else {
			out.Values[i] = math.NaN()
		}
	}
	return out, nil
}
