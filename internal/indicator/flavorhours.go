package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

const kelvinOffset = 273.15

// FlavorHoursParams configures the ripening-window hour count.
type FlavorHoursParams struct {
	// Band is the hourly near-surface temperature band, in Kelvin.
	Band string
	// TMin and TMax bound the target temperature band in °C.
	TMin float64
	TMax float64
}

// DefaultFlavorHoursParams targets the 16-22 °C band on the hourly
// reanalysis temperature.
func DefaultFlavorHoursParams() FlavorHoursParams {
	return FlavorHoursParams{Band: "t2m", TMin: 16, TMax: 22}
}

// FlavorHours counts, per pixel, the hours whose temperature falls inside
// [TMin, TMax] across the ripening window. Snapshots are hourly; the result
// is an integer-valued field in hours, bounded by the window length.
func FlavorHours(snaps []Snapshot, p FlavorHoursParams) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrap(ErrEmptyCollection, "flavorhours")
	}
	hourly := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		kelvin, err := snap.Band(p.Band)
		if err != nil {
			return nil, eris.Wrap(err, "flavorhours")
		}
		hourly = append(hourly, raster.Map(kelvin, "°C", func(k float64) float64 {
			return k - kelvinOffset
		}))
	}
	out, err := raster.CountOf(hourly, "hours", func(c float64) bool {
		return c >= p.TMin && c <= p.TMax
	})
	if err != nil {
		return nil, eris.Wrap(err, "flavorhours")
	}
	return out, nil
}
