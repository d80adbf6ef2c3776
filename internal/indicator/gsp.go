package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// GSP computes growing-season precipitation: the per-pixel sum of the
// monthly precipitation band over all snapshots, in millimeters. Callers
// filter snapshots to the growing season before calling.
func GSP(snaps []Snapshot, p ClimateParams) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrap(ErrEmptyCollection, "gsp")
	}
	monthly := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		pr, err := snap.Band(p.PrecipBand)
		if err != nil {
			return nil, eris.Wrap(err, "gsp")
		}
		monthly = append(monthly, pr)
	}
	out, err := raster.SumOf(monthly, "mm")
	if err != nil {
		return nil, eris.Wrap(err, "gsp")
	}
	return out, nil
}
