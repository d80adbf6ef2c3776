package region

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

func squarePoly(minX, minY, size float64) *shp.Polygon {
	pts := []shp.Point{
		{X: minX, Y: minY},
		{X: minX, Y: minY + size},
		{X: minX + size, Y: minY + size},
		{X: minX + size, Y: minY},
		{X: minX, Y: minY},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: minX, MinY: minY, MaxX: minX + size, MaxY: minY + size},
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
}

func writeTestShapefile(t *testing.T, names []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.shp")
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetFields([]shp.Field{shp.StringField("NAME", 40)}); err != nil {
		t.Fatal(err)
	}
	for i, name := range names {
		w.Write(squarePoly(float64(i)*20, 0, 10))
		if err := w.WriteAttribute(i, 0, name); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	return path
}

func TestResolve_SingleMatch(t *testing.T) {
	path := writeTestShapefile(t, []string{"Testland", "Westmark"})
	p := NewShapefileProvider(path, "NAME")

	r, err := p.Resolve(context.Background(), "Testland")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Testland" {
		t.Errorf("Name = %q", r.Name)
	}
	if !r.Contains(5, 5) {
		t.Error("center of Testland should be inside")
	}
	if r.Contains(25, 5) {
		t.Error("Westmark's square should be outside Testland")
	}
	if r.Contains(-1, 5) {
		t.Error("point west of the boundary should be outside")
	}
}

func TestResolve_CaseAndDiacriticInsensitive(t *testing.T) {
	path := writeTestShapefile(t, []string{"Kosovë"})
	p := NewShapefileProvider(path, "NAME")

	for _, query := range []string{"kosovë", "KOSOVE", "Kosove"} {
		if _, err := p.Resolve(context.Background(), query); err != nil {
			t.Errorf("Resolve(%q) failed: %v", query, err)
		}
	}
}

func TestResolve_NotFound(t *testing.T) {
	path := writeTestShapefile(t, []string{"Testland"})
	p := NewShapefileProvider(path, "NAME")

	_, err := p.Resolve(context.Background(), "Atlantis")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !eris.Is(err, ErrRegionNotFound) {
		t.Errorf("error chain should carry ErrRegionNotFound: %v", err)
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	path := writeTestShapefile(t, []string{"Dupville", "Dupville"})
	p := NewShapefileProvider(path, "NAME")

	_, err := p.Resolve(context.Background(), "Dupville")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !eris.Is(err, ErrRegionAmbiguous) {
		t.Errorf("error chain should carry ErrRegionAmbiguous: %v", err)
	}
}

func TestResolve_MissingNameField(t *testing.T) {
	path := writeTestShapefile(t, []string{"Testland"})
	p := NewShapefileProvider(path, "ADMIN_NAME")

	if _, err := p.Resolve(context.Background(), "Testland"); err == nil {
		t.Fatal("expected error for missing attribute field")
	}
}
