package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

func hourlySnap(t *testing.T, hour int, tempC float64) Snapshot {
	t.Helper()
	kelvin, err := raster.FromValues(grid1(), "K", []float64{tempC + 273.15})
	if err != nil {
		t.Fatal(err)
	}
	return Snapshot{
		Time:  time.Date(2024, time.August, 1, hour, 0, 0, 0, time.UTC),
		Bands: map[string]*raster.Field{"t2m": kelvin},
	}
}

func TestFlavorHours_CountsBandHours(t *testing.T) {
	// 16, 20, 22 qualify for [16, 22]; 15 and 23 do not.
	temps := []float64{15, 16, 20, 22, 23}
	snaps := make([]Snapshot, 0, len(temps))
	for i, c := range temps {
		snaps = append(snaps, hourlySnap(t, i, c))
	}

	hours, err := FlavorHours(snaps, DefaultFlavorHoursParams())
	if err != nil {
		t.Fatal(err)
	}
	if got := hours.At(0, 0); got != 3 {
		t.Errorf("FlavorHours = %v, want 3", got)
	}
}

func TestFlavorHours_BoundedByWindow(t *testing.T) {
	snaps := make([]Snapshot, 0, 48)
	for i := 0; i < 48; i++ {
		snaps = append(snaps, hourlySnap(t, i%24, 18))
	}
	hours, err := FlavorHours(snaps, DefaultFlavorHoursParams())
	if err != nil {
		t.Fatal(err)
	}
	got := hours.At(0, 0)
	if got < 0 || got > float64(len(snaps)) {
		t.Errorf("FlavorHours = %v, outside [0, %d]", got, len(snaps))
	}
	if got != 48 {
		t.Errorf("FlavorHours = %v, want 48 (every hour qualifies)", got)
	}
}

func TestFlavorHours_NoDataPixelStaysNoData(t *testing.T) {
	kelvin, _ := raster.FromValues(grid1(), "K", []float64{math.NaN()})
	snap := Snapshot{
		Time:  time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
		Bands: map[string]*raster.Field{"t2m": kelvin},
	}
	hours, err := FlavorHours([]Snapshot{snap}, DefaultFlavorHoursParams())
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(hours.At(0, 0)) {
		t.Errorf("no-data pixel counted as %v hours", hours.At(0, 0))
	}
}

func TestFlavorHours_EmptyWindow(t *testing.T) {
	if _, err := FlavorHours(nil, DefaultFlavorHoursParams()); err == nil {
		t.Fatal("expected error for empty window")
	}
}
