package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitisgeo/terroir-cli/internal/export"
	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/pipeline"
	"github.com/vitisgeo/terroir-cli/internal/render"
)

var (
	runRegion    string
	runYear      int
	runOut       string
	runOverlays  string
	runVineyards string
	runDry       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full suitability pipeline for a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runRegion != "" {
			cfg.Region.Name = runRegion
		}
		if runYear != 0 {
			cfg.Analysis.Year = runYear
		}
		if cfg.Region.Name == "" {
			return eris.New("region name is required (--region or region.name)")
		}

		e, err := initEnv(ctx, !runDry)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Pipeline.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		var capture *pipeline.CaptureReport
		vineyards := runVineyards
		if vineyards == "" {
			vineyards = cfg.Region.VineyardsShapefile
		}
		if vineyards != "" {
			capture, err = pipeline.VineyardCapture(vineyards, res.Composite)
			if err != nil {
				return eris.Wrap(err, "vineyard capture")
			}
		}

		if runOverlays != "" {
			if err := writeOverlays(runOverlays, res); err != nil {
				return err
			}
		}

		if runOut != "" {
			if err := export.WriteWorkbook(runOut, res.Run, res.Summaries, capture); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", runOut))
		}

		return printRunResult(res, capture)
	},
}

// writeOverlays renders one PNG per indicator plus the composite and score.
func writeOverlays(dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create overlay dir %s", dir)
	}

	write := func(name string, paint func(f *os.File) error) error {
		path := filepath.Join(dir, name+".png")
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		return paint(f)
	}

	for name, layer := range res.Layers {
		layer := layer
		if err := write(name, func(f *os.File) error {
			return render.WritePNG(f, render.PaintField(layer.Field, rampFor(name)))
		}); err != nil {
			return err
		}
		if err := write(name+"_mask", func(f *os.File) error {
			return render.WritePNG(f, render.PaintMask(layer.Mask))
		}); err != nil {
			return err
		}
	}
	if err := write(pipeline.IndComposite, func(f *os.File) error {
		return render.WritePNG(f, render.PaintMask(res.Composite))
	}); err != nil {
		return err
	}
	if err := write("score", func(f *os.File) error {
		ramp, _ := render.RampByName("suitability")
		return render.WritePNG(f, render.PaintField(res.Score, ramp))
	}); err != nil {
		return err
	}

	zap.L().Info("overlays written", zap.String("dir", dir), zap.Int("layers", len(res.Layers)))
	return nil
}

// rampFor picks a ramp suited to the indicator's physical quantity.
func rampFor(name string) render.Ramp {
	var rampName string
	switch name {
	case pipeline.IndGST, pipeline.IndGDD, pipeline.IndFlavorHours, pipeline.IndRadiation:
		rampName = "temperature"
	case pipeline.IndGSP, pipeline.IndNDWI, pipeline.IndNDMI:
		rampName = "precipitation"
	default:
		return render.DefaultRamp()
	}
	r, err := render.RampByName(rampName)
	if err != nil {
		return render.DefaultRamp()
	}
	return r
}

// printRunResult writes the run verdict as JSON to stdout.
func printRunResult(res *pipeline.Result, capture *pipeline.CaptureReport) error {
	stats := res.Composite.Summarize()
	out := struct {
		Run       *model.Run               `json:"run"`
		Region    string                   `json:"region"`
		Suitable  int                      `json:"suitable_cells"`
		Decided   int                      `json:"decided_cells"`
		Fraction  float64                  `json:"suitable_fraction"`
		Summaries []model.IndicatorSummary `json:"summaries"`
		Capture   *pipeline.CaptureReport  `json:"vineyard_capture,omitempty"`
	}{
		Run:       res.Run,
		Region:    res.Region.Name,
		Suitable:  stats.True,
		Decided:   stats.True + stats.False,
		Fraction:  stats.SuitableFraction(),
		Summaries: res.Summaries,
		Capture:   capture,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	runCmd.Flags().StringVar(&runRegion, "region", "", "administrative region name (default from config)")
	runCmd.Flags().IntVar(&runYear, "year", 0, "analysis year (default from config)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write an XLSX summary workbook to this path")
	runCmd.Flags().StringVar(&runOverlays, "overlays", "", "write PNG overlays into this directory")
	runCmd.Flags().StringVar(&runVineyards, "vineyards", "", "vineyard sites shapefile for capture validation")
	runCmd.Flags().BoolVar(&runDry, "dry", false, "skip the run database")
	rootCmd.AddCommand(runCmd)
}
