package source

import (
	"github.com/rotisserie/eris"
)

// ErrUnknownDataset reports a logical dataset ID with no catalog entry.
var ErrUnknownDataset = eris.New("source: unknown dataset id")

// Kind distinguishes temporal collections from single static rasters.
type Kind string

const (
	KindTemporal Kind = "temporal"
	KindStatic   Kind = "static"
)

// Dataset maps a logical ID to a platform collection.
type Dataset struct {
	// ID is the logical name pipelines refer to.
	ID string `yaml:"id" mapstructure:"id"`
	// Collection is the platform collection identifier.
	Collection string `yaml:"collection" mapstructure:"collection"`
	Kind       Kind   `yaml:"kind" mapstructure:"kind"`
	// Bands fetched when a query does not select its own.
	Bands []string `yaml:"bands" mapstructure:"bands"`
	// Mirror, when set, is an ftp:// base URL serving the same scene
	// payloads as the export API; bulk archives live there.
	Mirror string `yaml:"mirror" mapstructure:"mirror"`
}

// Catalog is the dataset registry.
type Catalog struct {
	byID map[string]Dataset
}

// NewCatalog builds a registry, rejecting duplicate or unnamed entries.
func NewCatalog(datasets ...Dataset) (*Catalog, error) {
	byID := make(map[string]Dataset, len(datasets))
	for _, ds := range datasets {
		if ds.ID == "" || ds.Collection == "" {
			return nil, eris.Errorf("source: dataset needs id and collection, got %+v", ds)
		}
		if _, dup := byID[ds.ID]; dup {
			return nil, eris.Errorf("source: duplicate dataset id %q", ds.ID)
		}
		if ds.Kind == "" {
			ds.Kind = KindTemporal
		}
		byID[ds.ID] = ds
	}
	return &Catalog{byID: byID}, nil
}

// CatalogWithOverrides starts from the defaults and replaces or adds the
// given entries, so deployments only declare the datasets they change.
func CatalogWithOverrides(overrides ...Dataset) (*Catalog, error) {
	c := DefaultCatalog()
	for _, ds := range overrides {
		if ds.ID == "" || ds.Collection == "" {
			return nil, eris.Errorf("source: dataset needs id and collection, got %+v", ds)
		}
		if ds.Kind == "" {
			ds.Kind = KindTemporal
		}
		if len(ds.Bands) == 0 {
			if prev, ok := c.byID[ds.ID]; ok {
				ds.Bands = prev.Bands
			}
		}
		c.byID[ds.ID] = ds
	}
	return c, nil
}

// Lookup resolves a logical dataset ID.
func (c *Catalog) Lookup(id string) (Dataset, error) {
	ds, ok := c.byID[id]
	if !ok {
		return Dataset{}, eris.Wrapf(ErrUnknownDataset, "%q", id)
	}
	return ds, nil
}

// Logical dataset IDs used by the indicator pipelines.
const (
	DatasetClimateMonthly     = "climate-monthly"
	DatasetTempHourly         = "temp-hourly"
	DatasetSurfaceReflectance = "surface-reflectance"
	DatasetElevation          = "elevation"
	DatasetSolarRadiation     = "solar-radiation"
	DatasetLandCover          = "land-cover"
	DatasetSoilPH             = "soil-ph"
)

// DefaultCatalog wires the logical IDs to their platform collections.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Dataset{ID: DatasetClimateMonthly, Collection: "IDAHO_EPSCOR/TERRACLIMATE", Kind: KindTemporal, Bands: []string{"tmmx", "tmmn", "pr"}},
		Dataset{ID: DatasetTempHourly, Collection: "ECMWF/ERA5_LAND/HOURLY", Kind: KindTemporal, Bands: []string{"t2m"}},
		Dataset{ID: DatasetSurfaceReflectance, Collection: "LANDSAT/LC09/C02/T1_L2", Kind: KindTemporal, Bands: []string{"sr_b3", "sr_b4", "sr_b5", "sr_b6"}},
		Dataset{ID: DatasetElevation, Collection: "USGS/SRTMGL1_003", Kind: KindStatic, Bands: []string{"elevation"}},
		Dataset{ID: DatasetSolarRadiation, Collection: "ECMWF/ERA5_LAND/MONTHLY_AGGR", Kind: KindTemporal, Bands: []string{"surface_solar_radiation_downwards_sum"}},
		// LC_Type1 is the IGBP classification; its class codes are what the
		// land-cover allow-list threshold is written against.
		Dataset{ID: DatasetLandCover, Collection: "MODIS/061/MCD12Q1", Kind: KindStatic, Bands: []string{"LC_Type1"}},
		Dataset{ID: DatasetSoilPH, Collection: "OPENLANDMAP/SOL/PH_H2O", Kind: KindStatic, Bands: []string{"phh2o"}},
	)
	if err != nil {
		// The defaults above are compile-time constants; a failure here is
		// a programming error.
		panic(err)
	}
	return c
}
