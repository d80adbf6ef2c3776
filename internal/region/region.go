// Package region resolves named administrative boundaries. Every pipeline
// clips its rasters to exactly one resolved region.
package region

import (
	"context"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrRegionNotFound reports that no administrative unit matched the name.
var ErrRegionNotFound = eris.New("region: no matching administrative unit")

// ErrRegionAmbiguous reports that more than one unit matched. The lookup
// requires exactly one match; callers must disambiguate rather than have a
// silently arbitrary boundary picked for them.
var ErrRegionAmbiguous = eris.New("region: name matches multiple administrative units")

// Region is a resolved analysis boundary. Immutable once resolved.
type Region struct {
	Name     string
	Geometry *geom.MultiPolygon
}

// Provider resolves a boundary by administrative-unit name.
type Provider interface {
	Resolve(ctx context.Context, name string) (*Region, error)
}

// Bounds returns the geographic bounding box of the region.
func (r *Region) Bounds() *geom.Bounds {
	return r.Geometry.Bounds()
}

// Contains reports whether the point lies inside the boundary, using
// even-odd ray crossing over every ring so holes are respected.
func (r *Region) Contains(x, y float64) bool {
	b := r.Geometry.Bounds()
	if x < b.Min(0) || x > b.Max(0) || y < b.Min(1) || y > b.Max(1) {
		return false
	}
	inside := false
	for pi := 0; pi < r.Geometry.NumPolygons(); pi++ {
		poly := r.Geometry.Polygon(pi)
		for ri := 0; ri < poly.NumLinearRings(); ri++ {
			if rayCrossesOdd(poly.LinearRing(ri).Coords(), x, y) {
				inside = !inside
			}
		}
	}
	return inside
}

// rayCrossesOdd reports whether a ray cast east from (x, y) crosses the ring
// an odd number of times.
func rayCrossesOdd(ring []geom.Coord, x, y float64) bool {
	odd := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) {
			if x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				odd = !odd
			}
		}
	}
	return odd
}

var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName folds case and strips diacritics so "Kosovë" and "kosove"
// resolve to the same unit.
func normalizeName(s string) string {
	stripped, _, err := transform.String(nameFolder, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
