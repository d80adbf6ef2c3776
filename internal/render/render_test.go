package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

func testGrid() raster.Grid {
	return raster.Grid{Cols: 2, Rows: 2, MinX: 0, MinY: 0, CellSize: 1, SRID: 4326}
}

func TestRampByName(t *testing.T) {
	for _, name := range []string{"viridis", "temperature", "precipitation", "suitability"} {
		if _, err := RampByName(name); err != nil {
			t.Errorf("RampByName(%q): %v", name, err)
		}
	}
	if _, err := RampByName("plasma"); err == nil {
		t.Error("unknown ramp should error")
	}
}

func TestRamp_EndpointsAndClamping(t *testing.T) {
	r := DefaultRamp()

	lo := r.At(0)
	if lo != (color.NRGBA{68, 1, 84, 255}) {
		t.Errorf("At(0) = %v", lo)
	}
	hi := r.At(1)
	if hi != (color.NRGBA{253, 231, 37, 255}) {
		t.Errorf("At(1) = %v", hi)
	}
	if r.At(-5) != lo || r.At(5) != hi {
		t.Error("out-of-range values should clamp to the end stops")
	}
	if r.At(math.NaN()) != lo {
		t.Error("NaN should clamp low rather than panic")
	}
}

func TestRamp_Interpolates(t *testing.T) {
	r, _ := RampByName("temperature")
	mid := r.At(0.25)
	// Halfway between the first two stops; every channel strictly between.
	if mid.R <= 49 || mid.R >= 255 {
		t.Errorf("mid.R = %d not interpolated", mid.R)
	}
}

func TestPaintField_NoDataTransparent(t *testing.T) {
	f := raster.NewField(testGrid(), "°C")
	f.Set(0, 0, 10)
	f.Set(1, 0, 20)
	f.Set(0, 1, 15)
	// (1,1) stays no-data.

	img := PaintField(f, DefaultRamp())

	if c := img.NRGBAAt(1, 1); c.A != 0 {
		t.Errorf("no-data pixel alpha = %d, want 0", c.A)
	}
	if c := img.NRGBAAt(0, 0); c.A != 255 {
		t.Errorf("valued pixel alpha = %d, want 255", c.A)
	}
	// Min maps to the low stop, max to the high stop.
	r := DefaultRamp()
	if img.NRGBAAt(0, 0) != r.At(0) {
		t.Error("min value should map to ramp start")
	}
	if img.NRGBAAt(1, 0) != r.At(1) {
		t.Error("max value should map to ramp end")
	}
}

func TestPaintField_DoesNotMutate(t *testing.T) {
	f := raster.NewField(testGrid(), "")
	f.Set(0, 0, 42)
	PaintField(f, DefaultRamp())
	if f.At(0, 0) != 42 {
		t.Error("painting must not change the field")
	}
}

func TestPaintField_ConstantField(t *testing.T) {
	f := raster.NewField(testGrid(), "")
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			f.Set(col, row, 7)
		}
	}
	img := PaintField(f, DefaultRamp())
	if img.NRGBAAt(0, 0).A != 255 {
		t.Error("constant field should still paint opaquely")
	}
}

func TestPaintMask(t *testing.T) {
	m := raster.NewMask(testGrid())
	m.Set(0, 0, raster.TriTrue)
	m.Set(1, 0, raster.TriFalse)
	// (0,1) and (1,1) stay no-data.

	img := PaintMask(m)
	if img.NRGBAAt(0, 0) != suitableGreen {
		t.Error("suitable cell should be green")
	}
	if img.NRGBAAt(1, 0) != unsuitableRed {
		t.Error("unsuitable cell should be red")
	}
	if img.NRGBAAt(0, 1).A != 0 {
		t.Error("no-data cell should be transparent")
	}
}

func TestWritePNG_RoundTrips(t *testing.T) {
	m := raster.NewMask(testGrid())
	m.Set(0, 0, raster.TriTrue)

	var buf bytes.Buffer
	if err := WritePNG(&buf, PaintMask(m)); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 2 || decoded.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
}
