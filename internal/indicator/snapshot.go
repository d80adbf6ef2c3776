// Package indicator computes the per-pixel agro-climatic indicator fields:
// growing-season temperature, growing degree days, growing-season
// precipitation, flavor hours, soil pH, vegetation/water indices, terrain,
// and solar radiation. Every computer is a pure function over snapshots that
// have already been filtered to the analysis region and period.
package indicator

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// ErrEmptyCollection reports that a filtered collection produced zero
// snapshots. Surfaced explicitly because a sum over nothing would be
// indistinguishable from a genuine zero.
var ErrEmptyCollection = eris.New("indicator: filtered collection is empty")

// Snapshot is one timestamped raster acquisition with its selected bands.
type Snapshot struct {
	Time  time.Time
	Bands map[string]*raster.Field
}

// Band returns the named band or an error naming what is missing.
func (s Snapshot) Band(name string) (*raster.Field, error) {
	f, ok := s.Bands[name]
	if !ok {
		return nil, eris.Errorf("indicator: snapshot %s has no band %q", s.Time.Format("2006-01-02T15"), name)
	}
	return f, nil
}
