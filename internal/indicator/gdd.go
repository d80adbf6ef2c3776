package indicator

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// GDDParams configures growing-degree-day accumulation.
type GDDParams struct {
	Climate      ClimateParams
	BaseTemp     float64
	DaysPerMonth float64
}

// DefaultGDDParams uses the viticultural convention of a 10 °C base and a
// 30-day month.
func DefaultGDDParams() GDDParams {
	return GDDParams{
		Climate:      DefaultClimateParams(),
		BaseTemp:     10,
		DaysPerMonth: 30,
	}
}

// GDD computes growing degree days: per snapshot
// max(0, tmean - baseTemp) * daysPerMonth, summed over all snapshots.
// Months colder than the base contribute zero, never a cooling debt.
func GDD(snaps []Snapshot, p GDDParams) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrap(ErrEmptyCollection, "gdd")
	}
	monthly := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		tmean, err := monthlyMeanTemp(snap, p.Climate)
		if err != nil {
			return nil, eris.Wrap(err, "gdd")
		}
		monthly = append(monthly, raster.Map(tmean, "°C·days", func(t float64) float64 {
			return math.Max(0, t-p.BaseTemp) * p.DaysPerMonth
		}))
	}
	out, err := raster.SumOf(monthly, "°C·days")
	if err != nil {
		return nil, eris.Wrap(err, "gdd")
	}
	return out, nil
}
