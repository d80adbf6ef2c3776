package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

const joulesPerMegajoule = 1e6

// Radiation sums the monthly aggregated surface solar radiation band over
// the year and converts joules to megajoules per square meter.
func Radiation(snaps []Snapshot, band string) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrap(ErrEmptyCollection, "radiation")
	}
	monthly := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		ssr, err := snap.Band(band)
		if err != nil {
			return nil, eris.Wrap(err, "radiation")
		}
		monthly = append(monthly, ssr)
	}
	annual, err := raster.SumOf(monthly, "J/m²")
	if err != nil {
		return nil, eris.Wrap(err, "radiation")
	}
	return raster.Map(annual, "MJ/m²", func(j float64) float64 {
		return j / joulesPerMegajoule
	}), nil
}
