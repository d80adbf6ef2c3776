// Package render turns fields and masks into PNG overlays.
package render

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
)

// stop anchors a color at a position in [0, 1].
type stop struct {
	pos float64
	c   color.NRGBA
}

// Ramp maps normalized values onto interpolated colors.
type Ramp struct {
	name  string
	stops []stop
}

var ramps = map[string]Ramp{
	"viridis": {name: "viridis", stops: []stop{
		{0.0, color.NRGBA{68, 1, 84, 255}},
		{0.25, color.NRGBA{59, 82, 139, 255}},
		{0.5, color.NRGBA{33, 145, 140, 255}},
		{0.75, color.NRGBA{94, 201, 98, 255}},
		{1.0, color.NRGBA{253, 231, 37, 255}},
	}},
	"temperature": {name: "temperature", stops: []stop{
		{0.0, color.NRGBA{49, 54, 149, 255}},
		{0.5, color.NRGBA{255, 255, 191, 255}},
		{1.0, color.NRGBA{165, 0, 38, 255}},
	}},
	"precipitation": {name: "precipitation", stops: []stop{
		{0.0, color.NRGBA{255, 255, 204, 255}},
		{0.5, color.NRGBA{65, 182, 196, 255}},
		{1.0, color.NRGBA{8, 29, 88, 255}},
	}},
	"suitability": {name: "suitability", stops: []stop{
		{0.0, color.NRGBA{215, 48, 39, 255}},
		{0.5, color.NRGBA{254, 224, 139, 255}},
		{1.0, color.NRGBA{26, 152, 80, 255}},
	}},
}

// RampByName looks up a named ramp.
func RampByName(name string) (Ramp, error) {
	r, ok := ramps[name]
	if !ok {
		return Ramp{}, eris.Errorf("render: unknown ramp %q", name)
	}
	return r, nil
}

// DefaultRamp is used when no ramp is configured.
func DefaultRamp() Ramp { return ramps["viridis"] }

// At returns the interpolated color for t in [0, 1]. Out-of-range values
// clamp to the end stops.
func (r Ramp) At(t float64) color.NRGBA {
	if math.IsNaN(t) || t <= r.stops[0].pos {
		return r.stops[0].c
	}
	last := r.stops[len(r.stops)-1]
	if t >= last.pos {
		return last.c
	}
	for i := 1; i < len(r.stops); i++ {
		if t <= r.stops[i].pos {
			lo, hi := r.stops[i-1], r.stops[i]
			f := (t - lo.pos) / (hi.pos - lo.pos)
			return lerp(lo.c, hi.c, f)
		}
	}
	return last.c
}

func lerp(a, b color.NRGBA, f float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}
