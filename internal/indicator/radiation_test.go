package indicator

import (
	"testing"
	"time"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

const ssrBand = "surface_solar_radiation_downwards_sum"

func radiationSnap(t *testing.T, month time.Month, joules float64) Snapshot {
	t.Helper()
	ssr, err := raster.FromValues(grid1(), "J/m²", []float64{joules})
	if err != nil {
		t.Fatal(err)
	}
	return Snapshot{
		Time:  time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC),
		Bands: map[string]*raster.Field{ssrBand: ssr},
	}
}

func TestRadiation_AnnualSumInMegajoules(t *testing.T) {
	snaps := make([]Snapshot, 0, 12)
	for m := time.January; m <= time.December; m++ {
		snaps = append(snaps, radiationSnap(t, m, 250e6))
	}
	rad, err := Radiation(snaps, ssrBand)
	if err != nil {
		t.Fatal(err)
	}
	if got := rad.At(0, 0); got != 3000 {
		t.Errorf("radiation = %v MJ, want 3000", got)
	}
	if rad.Unit != "MJ/m²" {
		t.Errorf("unit = %q", rad.Unit)
	}
}

func TestRadiation_EmptyCollection(t *testing.T) {
	if _, err := Radiation(nil, ssrBand); err == nil {
		t.Fatal("expected error for empty collection")
	}
}
