// Package source adapts the external grid-export platform into the
// pipeline's snapshot model: a dataset catalog keyed by logical ID, an
// immutable narrowing query, and a fetch layer with retry and rate limiting.
package source

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Query narrows a dataset to the scenes a pipeline needs. Queries are
// values; every filter returns a modified copy, so filters compose in any
// order without changing the result.
type Query struct {
	Dataset  string
	Start    time.Time
	End      time.Time
	MonthMin int
	MonthMax int
	BBox     [4]float64
	HasBBox  bool
	Bands    []string
	// MaxCloud caps scene cloud cover in percent; negative means unfiltered.
	MaxCloud float64
}

// NewQuery starts an unfiltered query against a logical dataset.
func NewQuery(dataset string) Query {
	return Query{Dataset: dataset, MaxCloud: -1}
}

// FilterBounds restricts scenes to those intersecting the bounding box.
func (q Query) FilterBounds(b *geom.Bounds) Query {
	q.BBox = [4]float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
	q.HasBBox = true
	return q
}

// FilterDate restricts scenes to the [start, end] acquisition window.
func (q Query) FilterDate(start, end time.Time) Query {
	q.Start, q.End = start, end
	return q
}

// FilterCalendarMonths restricts scenes to calendar months [min, max],
// regardless of year.
func (q Query) FilterCalendarMonths(min, max int) Query {
	q.MonthMin, q.MonthMax = min, max
	return q
}

// FilterMaxCloud drops scenes above the cloud-cover percentage.
func (q Query) FilterMaxCloud(pct float64) Query {
	q.MaxCloud = pct
	return q
}

// SelectBands narrows the bands fetched per scene.
func (q Query) SelectBands(bands ...string) Query {
	q.Bands = append([]string(nil), bands...)
	return q
}
