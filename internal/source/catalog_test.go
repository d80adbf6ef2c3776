package source

import (
	"testing"

	"github.com/rotisserie/eris"
)

func TestCatalog_LookupUnknown(t *testing.T) {
	c := DefaultCatalog()
	_, err := c.Lookup("mystery-dataset")
	if err == nil {
		t.Fatal("expected error")
	}
	if !eris.Is(err, ErrUnknownDataset) {
		t.Errorf("error chain should carry ErrUnknownDataset: %v", err)
	}
}

func TestCatalog_DefaultsCoverPipelineDatasets(t *testing.T) {
	c := DefaultCatalog()
	for _, id := range []string{
		DatasetClimateMonthly,
		DatasetTempHourly,
		DatasetSurfaceReflectance,
		DatasetElevation,
		DatasetSolarRadiation,
		DatasetLandCover,
		DatasetSoilPH,
	} {
		ds, err := c.Lookup(id)
		if err != nil {
			t.Errorf("Lookup(%q): %v", id, err)
			continue
		}
		if len(ds.Bands) == 0 {
			t.Errorf("dataset %q has no default bands", id)
		}
	}
}

func TestCatalog_LandCoverUsesIGBPClassification(t *testing.T) {
	// The land-cover allow-list threshold is written against IGBP class
	// codes, so the default binding must serve the IGBP band.
	ds, err := DefaultCatalog().Lookup(DatasetLandCover)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Collection != "MODIS/061/MCD12Q1" {
		t.Errorf("collection = %q", ds.Collection)
	}
	if len(ds.Bands) != 1 || ds.Bands[0] != "LC_Type1" {
		t.Errorf("bands = %v, want [LC_Type1]", ds.Bands)
	}
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog(
		Dataset{ID: "a", Collection: "X"},
		Dataset{ID: "a", Collection: "Y"},
	)
	if err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestNewCatalog_DefaultsKindTemporal(t *testing.T) {
	c, err := NewCatalog(Dataset{ID: "a", Collection: "X"})
	if err != nil {
		t.Fatal(err)
	}
	ds, _ := c.Lookup("a")
	if ds.Kind != KindTemporal {
		t.Errorf("kind = %q, want temporal", ds.Kind)
	}
}

func TestCatalogWithOverrides(t *testing.T) {
	c, err := CatalogWithOverrides(
		Dataset{ID: DatasetClimateMonthly, Collection: "CUSTOM/CLIMATE", Mirror: "ftp://mirror.example.com/climate"},
		Dataset{ID: "extra", Collection: "CUSTOM/EXTRA", Bands: []string{"b1"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	ds, err := c.Lookup(DatasetClimateMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Collection != "CUSTOM/CLIMATE" {
		t.Errorf("collection = %q", ds.Collection)
	}
	// Bands carry over from the default entry when the override omits them.
	if len(ds.Bands) != 3 {
		t.Errorf("bands = %v", ds.Bands)
	}
	if ds.Mirror != "ftp://mirror.example.com/climate" {
		t.Errorf("mirror = %q", ds.Mirror)
	}

	if _, err := c.Lookup("extra"); err != nil {
		t.Errorf("added dataset missing: %v", err)
	}
	// Untouched defaults remain.
	if _, err := c.Lookup(DatasetElevation); err != nil {
		t.Errorf("default dataset missing: %v", err)
	}
}

func TestMirrorScenePath(t *testing.T) {
	host, path, err := mirrorScenePath("ftp://mirror.eogrid.io/archives/terraclimate", "2024-04")
	if err != nil {
		t.Fatal(err)
	}
	if host != "mirror.eogrid.io:21" {
		t.Errorf("host = %q", host)
	}
	if path != "/archives/terraclimate/2024-04.json" {
		t.Errorf("path = %q", path)
	}

	if _, _, err := mirrorScenePath("https://not-ftp.example.com", "x"); err == nil {
		t.Error("non-ftp scheme should be rejected")
	}
}
