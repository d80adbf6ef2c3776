package pipeline

import (
	"math"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// CaptureReport validates a composite mask against known vineyard sites: the
// fraction of sites that land on cells the mask calls suitable. Sites on
// no-data cells are excluded from the denominator.
type CaptureReport struct {
	Sites     int     `json:"sites"`
	Captured  int     `json:"captured"`
	Undecided int     `json:"undecided"`
	Fraction  float64 `json:"fraction"`
}

// VineyardCapture reads vineyard sites from a shapefile and scores them
// against the composite mask. Point features are used directly; polygon
// features contribute their first-ring centroid.
func VineyardCapture(path string, composite *raster.Mask) (*CaptureReport, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open vineyards shapefile %s", path)
	}
	defer reader.Close()

	rep := &CaptureReport{}
	for reader.Next() {
		_, shape := reader.Shape()
		x, y, ok := siteLocation(shape)
		if !ok {
			continue
		}
		col, row, inGrid := cellIndex(composite.Grid, x, y)
		if !inGrid {
			continue
		}
		rep.Sites++
		switch composite.At(col, row) {
		case raster.TriTrue:
			rep.Captured++
		case raster.TriNoData:
			rep.Undecided++
		}
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: read vineyards shapefile")
	}

	decided := rep.Sites - rep.Undecided
	if decided > 0 {
		rep.Fraction = float64(rep.Captured) / float64(decided)
	}
	zap.L().Info("vineyard capture",
		zap.Int("sites", rep.Sites),
		zap.Int("captured", rep.Captured),
		zap.Float64("fraction", rep.Fraction),
	)
	return rep, nil
}

func siteLocation(shape shp.Shape) (x, y float64, ok bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return s.X, s.Y, true
	case *shp.Polygon:
		return ringCentroid(s.Points)
	default:
		return 0, 0, false
	}
}

func ringCentroid(points []shp.Point) (x, y float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return sx / n, sy / n, true
}

// cellIndex maps a point to grid coordinates. Row 0 is the northern edge.
// Floor keeps points just west or south of the origin negative instead of
// truncating them into column or row zero.
func cellIndex(g raster.Grid, x, y float64) (col, row int, ok bool) {
	col = int(math.Floor((x - g.MinX) / g.CellSize))
	row = g.Rows - 1 - int(math.Floor((y-g.MinY)/g.CellSize))
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, 0, false
	}
	return col, row, true
}
