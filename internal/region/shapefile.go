package region

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ShapefileProvider resolves boundaries from a local administrative-units
// shapefile, matching on a configurable name attribute.
type ShapefileProvider struct {
	Path      string
	NameField string
}

// NewShapefileProvider creates a provider over the given shapefile. The name
// field defaults to "NAME".
func NewShapefileProvider(path, nameField string) *ShapefileProvider {
	if nameField == "" {
		nameField = "NAME"
	}
	return &ShapefileProvider{Path: path, NameField: nameField}
}

// Resolve scans the shapefile for units whose name attribute matches. It
// enforces the single-match policy: zero matches yield ErrRegionNotFound,
// more than one yields ErrRegionAmbiguous with the candidate names.
func (p *ShapefileProvider) Resolve(_ context.Context, name string) (*Region, error) {
	reader, err := shp.Open(p.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: open shapefile %s", p.Path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), p.NameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("region: shapefile has no %q field", p.NameField)
	}

	want := normalizeName(name)
	var matches []*Region
	var candidates []string

	for reader.Next() {
		_, shape := reader.Shape()
		attr := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if normalizeName(attr) != want {
			continue
		}
		poly, ok := shape.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			zap.L().Warn("region: matching unit has no polygon geometry", zap.String("name", attr))
			continue
		}
		mp, convErr := polygonToGeom(poly)
		if convErr != nil {
			return nil, eris.Wrapf(convErr, "region: convert geometry for %s", attr)
		}
		matches = append(matches, &Region{Name: attr, Geometry: mp})
		candidates = append(candidates, attr)
	}

	switch len(matches) {
	case 0:
		return nil, eris.Wrapf(ErrRegionNotFound, "name %q in %s", name, p.Path)
	case 1:
		zap.L().Info("region resolved",
			zap.String("name", matches[0].Name),
			zap.Int("polygons", matches[0].Geometry.NumPolygons()),
		)
		return matches[0], nil
	default:
		return nil, eris.Wrapf(ErrRegionAmbiguous, "name %q matched %s", name, strings.Join(candidates, ", "))
	}
}

// polygonToGeom converts a shapefile polygon to a go-geom MultiPolygon, one
// polygon per part.
func polygonToGeom(p *shp.Polygon) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}
		ring := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		poly := geom.NewPolygon(geom.XY)
		if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
			return nil, err
		}
		if err := mp.Push(poly); err != nil {
			return nil, err
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.New("region: polygon has no usable parts")
	}
	return mp, nil
}
