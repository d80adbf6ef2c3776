package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// ClimateParams names the monthly climate bands and their integer scaling.
// The reanalysis stores temperatures as tenths of a degree, so the default
// scale is 0.1.
type ClimateParams struct {
	TmaxBand   string
	TminBand   string
	PrecipBand string
	Scale      float64
}

// DefaultClimateParams matches the monthly climate reanalysis collection.
func DefaultClimateParams() ClimateParams {
	return ClimateParams{
		TmaxBand:   "tmmx",
		TminBand:   "tmmn",
		PrecipBand: "pr",
		Scale:      0.1,
	}
}

// monthlyMeanTemp derives per-snapshot mean temperature in °C:
// (tmax*scale + tmin*scale) / 2.
func monthlyMeanTemp(snap Snapshot, p ClimateParams) (*raster.Field, error) {
	tmax, err := snap.Band(p.TmaxBand)
	if err != nil {
		return nil, err
	}
	tmin, err := snap.Band(p.TminBand)
	if err != nil {
		return nil, err
	}
	return raster.Zip(tmax, tmin, "°C", func(hi, lo float64) float64 {
		return (hi*p.Scale + lo*p.Scale) / 2
	})
}

// GST computes growing-season mean temperature: the arithmetic mean of the
// monthly mean temperature over all snapshots. Callers filter snapshots to
// the growing season (months 4-10) before calling.
func GST(snaps []Snapshot, p ClimateParams) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrap(ErrEmptyCollection, "gst")
	}
	means := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		tmean, err := monthlyMeanTemp(snap, p)
		if err != nil {
			return nil, eris.Wrap(err, "gst")
		}
		means = append(means, tmean)
	}
	out, err := raster.MeanOf(means, "°C")
	if err != nil {
		return nil, eris.Wrap(err, "gst")
	}
	return out, nil
}
