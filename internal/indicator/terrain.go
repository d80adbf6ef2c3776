package indicator

import (
	"math"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// MetersPerDegree is an approximate conversion for geographic cell sizes at
// mid-latitudes, used to express the slope run in the same units as the
// elevation rise.
const MetersPerDegree = 111320.0

// Elevation returns the raw elevation band relabeled in meters.
func Elevation(dem *raster.Field) *raster.Field {
	out := dem.Clone()
	out.Unit = "m"
	return out
}

// Slope derives slope in degrees from an elevation model using Horn's
// third-order finite difference over the 3x3 neighborhood. Border cells and
// cells with a missing neighbor stay no-data.
func Slope(dem *raster.Field) *raster.Field {
	g := dem.Grid
	out := raster.NewField(g, "°")

	run := g.CellSize
	if g.SRID == 4326 {
		run = g.CellSize * MetersPerDegree
	}

	for row := 1; row < g.Rows-1; row++ {
		for col := 1; col < g.Cols-1; col++ {
			var z [3][3]float64
			valid := true
			for dr := -1; dr <= 1 && valid; dr++ {
				for dc := -1; dc <= 1; dc++ {
					v := dem.At(col+dc, row+dr)
					if math.IsNaN(v) {
						valid = false
						break
					}
					z[dr+1][dc+1] = v
				}
			}
			if !valid {
				continue
			}

			dzdx := ((z[0][2] + 2*z[1][2] + z[2][2]) - (z[0][0] + 2*z[1][0] + z[2][0])) / (8 * run)
			dzdy := ((z[2][0] + 2*z[2][1] + z[2][2]) - (z[0][0] + 2*z[0][1] + z[0][2])) / (8 * run)

			rise := math.Sqrt(dzdx*dzdx + dzdy*dzdy)
			out.Set(col, row, math.Atan(rise)*180/math.Pi)
		}
	}
	return out
}
