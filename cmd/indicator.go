package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vitisgeo/terroir-cli/internal/pipeline"
	"github.com/vitisgeo/terroir-cli/internal/render"
)

var (
	indicatorRegion string
	indicatorYear   int
	indicatorPNG    string
)

var indicatorCmd = &cobra.Command{
	Use:   "indicator <name>",
	Short: "Compute a single indicator over the region",
	Long:  "Computes one indicator (" + strings.Join(pipeline.Indicators, ", ") + ") and prints its field statistics and mask tallies.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		if indicatorRegion != "" {
			cfg.Region.Name = indicatorRegion
		}
		if indicatorYear != 0 {
			cfg.Analysis.Year = indicatorYear
		}
		if cfg.Region.Name == "" {
			return eris.New("region name is required (--region or region.name)")
		}

		e, err := initEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		reg, layer, err := e.Pipeline.ComputeIndicator(ctx, name)
		if err != nil {
			return err
		}

		if indicatorPNG != "" {
			f, err := os.Create(indicatorPNG)
			if err != nil {
				return eris.Wrapf(err, "create %s", indicatorPNG)
			}
			defer f.Close()
			if err := render.WritePNG(f, render.PaintField(layer.Field, rampFor(name))); err != nil {
				return err
			}
		}

		fs := layer.Field.Summarize()
		ms := layer.Mask.Summarize()
		out := struct {
			Indicator string  `json:"indicator"`
			Region    string  `json:"region"`
			Unit      string  `json:"unit"`
			Min       float64 `json:"min"`
			Max       float64 `json:"max"`
			Mean      float64 `json:"mean"`
			Suitable  int     `json:"cells_suitable"`
			Failing   int     `json:"cells_unsuitable"`
			NoData    int     `json:"cells_nodata"`
			Fraction  float64 `json:"suitable_fraction"`
		}{
			Indicator: name,
			Region:    reg.Name,
			Unit:      layer.Field.Unit,
			Min:       fs.Min,
			Max:       fs.Max,
			Mean:      fs.Mean,
			Suitable:  ms.True,
			Failing:   ms.False,
			NoData:    ms.NoData,
			Fraction:  ms.SuitableFraction(),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	indicatorCmd.Flags().StringVar(&indicatorRegion, "region", "", "administrative region name (default from config)")
	indicatorCmd.Flags().IntVar(&indicatorYear, "year", 0, "analysis year (default from config)")
	indicatorCmd.Flags().StringVar(&indicatorPNG, "png", "", "write the field overlay to this PNG path")
	rootCmd.AddCommand(indicatorCmd)
}
