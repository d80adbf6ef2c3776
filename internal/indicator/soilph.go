package indicator

import (
	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// SoilPH converts the raw soil raster to pH units. The source stores pH
// times ten; the conversion is a pure scaling with no clamping.
func SoilPH(raw *raster.Field) *raster.Field {
	return raster.Map(raw, "pH", func(v float64) float64 { return v / 10 })
}
