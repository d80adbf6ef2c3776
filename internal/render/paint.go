package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/raster"
)

// transparent marks no-data pixels.
var transparent = color.NRGBA{}

// Mask overlay colors.
var (
	suitableGreen = color.NRGBA{26, 152, 80, 255}
	unsuitableRed = color.NRGBA{215, 48, 39, 180}
)

// PaintField renders a field as an NRGBA image, stretching values between
// the field's observed min and max onto the ramp. No-data cells come out
// fully transparent. The field is not modified.
func PaintField(f *raster.Field, ramp Ramp) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Grid.Cols, f.Grid.Rows))
	stats := f.Summarize()
	span := stats.Max - stats.Min

	for row := 0; row < f.Grid.Rows; row++ {
		for col := 0; col < f.Grid.Cols; col++ {
			v := f.At(col, row)
			if math.IsNaN(v) {
				img.SetNRGBA(col, row, transparent)
				continue
			}
			t := 0.5
			if span > 0 {
				t = (v - stats.Min) / span
			}
			img.SetNRGBA(col, row, ramp.At(t))
		}
	}
	return img
}

// PaintMask renders a three-valued mask: green for suitable, translucent red
// for unsuitable, transparent for no-data.
func PaintMask(m *raster.Mask) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Grid.Cols, m.Grid.Rows))
	for row := 0; row < m.Grid.Rows; row++ {
		for col := 0; col < m.Grid.Cols; col++ {
			switch m.At(col, row) {
			case raster.TriTrue:
				img.SetNRGBA(col, row, suitableGreen)
			case raster.TriFalse:
				img.SetNRGBA(col, row, unsuitableRed)
			default:
				img.SetNRGBA(col, row, transparent)
			}
		}
	}
	return img
}

// WritePNG encodes an image to the writer.
func WritePNG(w io.Writer, img image.Image) error {
	return eris.Wrap(png.Encode(w, img), "render: encode png")
}
