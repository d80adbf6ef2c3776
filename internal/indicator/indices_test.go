package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// reflSnap builds a one-pixel scene from already-rescaled reflectances by
// inverting the radiometric rescale, so the computer sees raw DNs.
func reflSnap(t *testing.T, day int, refl map[string]float64) Snapshot {
	t.Helper()
	p := DefaultReflectanceParams()
	bands := make(map[string]*raster.Field, len(refl))
	for name, r := range refl {
		dn := (r - p.Offset) / p.Scale
		f, err := raster.FromValues(grid1(), "dn", []float64{dn})
		if err != nil {
			t.Fatal(err)
		}
		bands[name] = f
	}
	return Snapshot{
		Time:  time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC),
		Bands: bands,
	}
}

func TestNDVI_SingleScene(t *testing.T) {
	snap := reflSnap(t, 1, map[string]float64{BandNIR: 0.6, BandRed: 0.2})
	ndvi, err := NDVI([]Snapshot{snap}, DefaultReflectanceParams())
	if err != nil {
		t.Fatal(err)
	}
	if got := ndvi.At(0, 0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("NDVI = %v, want 0.5", got)
	}
}

func TestNDVI_MedianIgnoresCloudyScene(t *testing.T) {
	snaps := []Snapshot{
		reflSnap(t, 1, map[string]float64{BandNIR: 0.60, BandRed: 0.20}), // 0.5
		reflSnap(t, 9, map[string]float64{BandNIR: 0.66, BandRed: 0.22}), // 0.5
		reflSnap(t, 17, map[string]float64{BandNIR: 0.10, BandRed: 0.90}), // cloud: -0.8
	}
	ndvi, err := NDVI(snaps, DefaultReflectanceParams())
	if err != nil {
		t.Fatal(err)
	}
	if got := ndvi.At(0, 0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("median NDVI = %v, want 0.5 (outlier scene should not drag it)", got)
	}
}

func TestNDWI_NDMI_BandPairs(t *testing.T) {
	refl := map[string]float64{
		BandGreen: 0.30,
		BandNIR:   0.10,
		BandSWIR1: 0.05,
	}
	snap := reflSnap(t, 1, refl)
	p := DefaultReflectanceParams()

	ndwi, err := NDWI([]Snapshot{snap}, p)
	if err != nil {
		t.Fatal(err)
	}
	wantNDWI := (0.30 - 0.10) / (0.30 + 0.10)
	if got := ndwi.At(0, 0); math.Abs(got-wantNDWI) > 1e-9 {
		t.Errorf("NDWI = %v, want %v", got, wantNDWI)
	}

	ndmi, err := NDMI([]Snapshot{snap}, p)
	if err != nil {
		t.Fatal(err)
	}
	wantNDMI := (0.10 - 0.05) / (0.10 + 0.05)
	if got := ndmi.At(0, 0); math.Abs(got-wantNDMI) > 1e-9 {
		t.Errorf("NDMI = %v, want %v", got, wantNDMI)
	}
}

func TestIndices_EmptyPeriod(t *testing.T) {
	if _, err := NDVI(nil, DefaultReflectanceParams()); err == nil {
		t.Fatal("expected error for empty scene list")
	}
}
