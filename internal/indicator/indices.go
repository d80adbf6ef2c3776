package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// ReflectanceParams holds the radiometric rescale applied to raw
// surface-reflectance digital numbers before index math.
type ReflectanceParams struct {
	Scale  float64
	Offset float64
}

// DefaultReflectanceParams matches the collection-2 level-2 surface
// reflectance product.
func DefaultReflectanceParams() ReflectanceParams {
	return ReflectanceParams{Scale: 2.75e-5, Offset: -0.2}
}

// Surface reflectance band names.
const (
	BandGreen = "sr_b3"
	BandRed   = "sr_b4"
	BandNIR   = "sr_b5"
	BandSWIR1 = "sr_b6"
)

func rescale(f *raster.Field, p ReflectanceParams) *raster.Field {
	return raster.Map(f, "reflectance", func(dn float64) float64 {
		return dn*p.Scale + p.Offset
	})
}

// NormalizedDifferenceComposite computes (a-b)/(a+b) per scene after the
// radiometric rescale and reduces the stack with a per-pixel median. Median
// rather than mean keeps cloud-contaminated scenes from dragging the
// composite.
func NormalizedDifferenceComposite(snaps []Snapshot, bandA, bandB string, p ReflectanceParams) (*raster.Field, error) {
	if len(snaps) == 0 {
		return nil, eris.Wrapf(ErrEmptyCollection, "index %s/%s", bandA, bandB)
	}
	perScene := make([]*raster.Field, 0, len(snaps))
	for _, snap := range snaps {
		a, err := snap.Band(bandA)
		if err != nil {
			return nil, eris.Wrap(err, "index")
		}
		b, err := snap.Band(bandB)
		if err != nil {
			return nil, eris.Wrap(err, "index")
		}
		nd, err := raster.NormalizedDifference(rescale(a, p), rescale(b, p))
		if err != nil {
			return nil, eris.Wrap(err, "index")
		}
		perScene = append(perScene, nd)
	}
	out, err := raster.MedianOf(perScene, "index")
	if err != nil {
		return nil, eris.Wrap(err, "index")
	}
	return out, nil
}

// NDVI is the vegetation index (NIR vs red).
func NDVI(snaps []Snapshot, p ReflectanceParams) (*raster.Field, error) {
	return NormalizedDifferenceComposite(snaps, BandNIR, BandRed, p)
}

// NDWI is the water index (green vs NIR).
func NDWI(snaps []Snapshot, p ReflectanceParams) (*raster.Field, error) {
	return NormalizedDifferenceComposite(snaps, BandGreen, BandNIR, p)
}

// NDMI is the moisture index (NIR vs SWIR1).
func NDMI(snaps []Snapshot, p ReflectanceParams) (*raster.Field, error) {
	return NormalizedDifferenceComposite(snaps, BandNIR, BandSWIR1, p)
}
