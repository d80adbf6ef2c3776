package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vitisgeo/terroir-cli/internal/region"
)

var regionCmd = &cobra.Command{
	Use:   "region <name>",
	Short: "Resolve an administrative region and print its bounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		regions, err := initRegions()
		if err != nil {
			return err
		}

		r, err := regions.Resolve(cmd.Context(), args[0])
		if err != nil {
			if eris.Is(err, region.ErrRegionAmbiguous) {
				return eris.Wrap(err, "pass a more specific name")
			}
			return err
		}

		b := r.Bounds()
		out := struct {
			Name     string     `json:"name"`
			Polygons int        `json:"polygons"`
			BBox     [4]float64 `json:"bbox"`
		}{
			Name:     r.Name,
			Polygons: r.Geometry.NumPolygons(),
			BBox:     [4]float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)},
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(regionCmd)
}
