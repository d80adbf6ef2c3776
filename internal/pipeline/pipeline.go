// Package pipeline orchestrates a full suitability run: resolve the region,
// compute every indicator over it, threshold each one into a mask, and
// combine the masks into the composite verdict.
package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vitisgeo/terroir-cli/internal/config"
	"github.com/vitisgeo/terroir-cli/internal/indicator"
	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/raster"
	"github.com/vitisgeo/terroir-cli/internal/region"
	"github.com/vitisgeo/terroir-cli/internal/source"
	"github.com/vitisgeo/terroir-cli/internal/store"
	"github.com/vitisgeo/terroir-cli/internal/suitability"
)

// Canonical indicator names, used as map keys, summary rows, and overlay
// route segments.
const (
	IndGST         = "gst"
	IndGDD         = "gdd"
	IndGSP         = "gsp"
	IndFlavorHours = "flavor_hours"
	IndSoilPH      = "soil_ph"
	IndNDVI        = "ndvi"
	IndNDWI        = "ndwi"
	IndNDMI        = "ndmi"
	IndSlope       = "slope"
	IndElevation   = "elevation"
	IndRadiation   = "radiation"
	IndLandCover   = "land_cover"

	// IndComposite is the AND of every indicator mask.
	IndComposite = "composite"
)

// Indicators lists every per-indicator output in evaluation order.
var Indicators = []string{
	IndGST, IndGDD, IndGSP, IndFlavorHours, IndSoilPH,
	IndNDVI, IndNDWI, IndNDMI,
	IndSlope, IndElevation, IndRadiation, IndLandCover,
}

// Layer is one computed indicator: the clipped field and its mask.
type Layer struct {
	Field *raster.Field
	Mask  *raster.Mask
}

// Result is the outcome of a completed run.
type Result struct {
	Run       *model.Run
	Region    *region.Region
	Layers    map[string]Layer
	Composite *raster.Mask
	Score     *raster.Field
	Summaries []model.IndicatorSummary
}

// Pipeline wires the source, region provider, and store together.
type Pipeline struct {
	cfg      *config.Config
	source   *source.Source
	regions  region.Provider
	store    store.Store
	recorder *Recorder
}

// New creates a Pipeline. The store may be nil for dry runs.
func New(cfg *config.Config, src *source.Source, regions region.Provider, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		source:   src,
		regions:  regions,
		store:    st,
		recorder: &Recorder{store: st},
	}
}

// Run executes the full pipeline for the configured region and year.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline"))
	started := time.Now()

	reg, err := p.regions.Resolve(ctx, p.cfg.Region.Name)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: resolve region %q", p.cfg.Region.Name)
	}
	log.Info("region resolved", zap.String("region", reg.Name))

	run, err := p.recorder.Begin(ctx, reg.Name, p.cfg.Analysis.Year)
	if err != nil {
		return nil, err
	}

	res, err := p.compute(ctx, reg)
	if err != nil {
		p.recorder.Fail(ctx, run, err)
		return nil, err
	}
	res.Run = run
	res.Region = reg

	if err := p.recorder.Complete(ctx, run, res); err != nil {
		return nil, err
	}

	log.Info("run complete",
		zap.String("run_id", run.ID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Float64("suitable_fraction", res.Composite.Summarize().SuitableFraction()),
	)
	return res, nil
}

// compute fetches and evaluates every indicator concurrently, then clips and
// combines them.
func (p *Pipeline) compute(ctx context.Context, reg *region.Region) (*Result, error) {
	fields := make(map[string]*raster.Field, len(Indicators))
	var mu sync.Mutex
	put := func(name string, f *raster.Field) {
		mu.Lock()
		fields[name] = f
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.computeClimate(gctx, reg, put) })
	g.Go(func() error { return p.computeFlavorHours(gctx, reg, put) })
	g.Go(func() error { return p.computeIndices(gctx, reg, put) })
	g.Go(func() error { return p.computeTerrain(gctx, reg, put) })
	g.Go(func() error { return p.computeRadiation(gctx, reg, put) })
	g.Go(func() error { return p.computeStatics(gctx, reg, put) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range fields {
		f.Clip(reg.Contains)
	}

	layers := make(map[string]Layer, len(fields))
	masks := make(map[string]*raster.Mask, len(fields))
	for name, f := range fields {
		m, err := p.evaluate(name, f)
		if err != nil {
			return nil, err
		}
		layers[name] = Layer{Field: f, Mask: m}
		masks[name] = m
	}

	ordered := make([]*raster.Mask, 0, len(Indicators))
	for _, name := range Indicators {
		m, ok := masks[name]
		if !ok {
			return nil, eris.Errorf("pipeline: indicator %s missing from results", name)
		}
		// The combine step assumes one shared grid. Source collections
		// differ in native resolution, so a mismatch here means a dataset
		// was exported on its own grid; name both sides.
		if len(ordered) > 0 && !m.Grid.Equal(ordered[0].Grid) {
			return nil, eris.Errorf("pipeline: %s mask on grid %s but %s mask on grid %s; export all datasets on one grid",
				name, m.Grid, Indicators[0], ordered[0].Grid)
		}
		ordered = append(ordered, m)
	}

	composite, err := suitability.CombineAll(ordered...)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: combine")
	}
	if composite.Summarize().True == 0 {
		zap.L().Warn("no suitable cells in region", zap.String("region", reg.Name))
	}

	score, err := suitability.WeightedScore(masks, p.cfg.Weights)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: weighted score")
	}

	return &Result{
		Layers:    layers,
		Composite: composite,
		Score:     score,
		Summaries: p.summarize(layers, composite),
	}, nil
}

// ComputeIndicator resolves the region and computes a single named
// indicator, returning its clipped field and mask. Indicators sharing a
// download (the climate trio, the index trio, slope and elevation) are
// computed together but only the requested one is returned.
func (p *Pipeline) ComputeIndicator(ctx context.Context, name string) (*region.Region, Layer, error) {
	reg, err := p.regions.Resolve(ctx, p.cfg.Region.Name)
	if err != nil {
		return nil, Layer{}, eris.Wrapf(err, "pipeline: resolve region %q", p.cfg.Region.Name)
	}

	groups := map[string]func(context.Context, *region.Region, func(string, *raster.Field)) error{
		IndGST:         p.computeClimate,
		IndGDD:         p.computeClimate,
		IndGSP:         p.computeClimate,
		IndFlavorHours: p.computeFlavorHours,
		IndNDVI:        p.computeIndices,
		IndNDWI:        p.computeIndices,
		IndNDMI:        p.computeIndices,
		IndSlope:       p.computeTerrain,
		IndElevation:   p.computeTerrain,
		IndRadiation:   p.computeRadiation,
		IndLandCover:   p.computeStatics,
		IndSoilPH:      p.computeStatics,
	}
	group, ok := groups[name]
	if !ok {
		return nil, Layer{}, eris.Errorf("pipeline: unknown indicator %q", name)
	}

	fields := make(map[string]*raster.Field)
	var mu sync.Mutex
	if err := group(ctx, reg, func(n string, f *raster.Field) {
		mu.Lock()
		fields[n] = f
		mu.Unlock()
	}); err != nil {
		return nil, Layer{}, err
	}

	f, ok := fields[name]
	if !ok {
		return nil, Layer{}, eris.Errorf("pipeline: indicator %s missing from results", name)
	}
	f.Clip(reg.Contains)

	m, err := p.evaluate(name, f)
	if err != nil {
		return nil, Layer{}, err
	}
	return reg, Layer{Field: f, Mask: m}, nil
}

// seasonQuery restricts a temporal dataset to the analysis year, the growing
// season months, and the region's bounding box.
func (p *Pipeline) seasonQuery(dataset string, reg *region.Region) source.Query {
	year := p.cfg.Analysis.Year
	return source.NewQuery(dataset).
		FilterBounds(reg.Bounds()).
		FilterDate(
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
		).
		FilterCalendarMonths(p.cfg.Analysis.SeasonMonthMin, p.cfg.Analysis.SeasonMonthMax)
}

func (p *Pipeline) computeClimate(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	snaps, err := p.source.Snapshots(ctx, p.seasonQuery(source.DatasetClimateMonthly, reg))
	if err != nil {
		return eris.Wrap(err, "pipeline: climate snapshots")
	}

	climate := indicator.DefaultClimateParams()

	gst, err := indicator.GST(snaps, climate)
	if err != nil {
		return eris.Wrap(err, "pipeline: gst")
	}
	put(IndGST, gst)

	gddParams := indicator.GDDParams{
		Climate:      climate,
		BaseTemp:     p.cfg.Thresholds.GDD.BaseTemp,
		DaysPerMonth: p.cfg.Thresholds.GDD.DaysPerMonth,
	}
	gdd, err := indicator.GDD(snaps, gddParams)
	if err != nil {
		return eris.Wrap(err, "pipeline: gdd")
	}
	put(IndGDD, gdd)

	gsp, err := indicator.GSP(snaps, climate)
	if err != nil {
		return eris.Wrap(err, "pipeline: gsp")
	}
	put(IndGSP, gsp)
	return nil
}

func (p *Pipeline) computeFlavorHours(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	fh := p.cfg.Thresholds.FlavorHours
	start, err := time.Parse("2006-01-02", fh.WindowStart)
	if err != nil {
		return eris.Wrapf(err, "pipeline: flavor hours window start %q", fh.WindowStart)
	}
	end, err := time.Parse("2006-01-02", fh.WindowEnd)
	if err != nil {
		return eris.Wrapf(err, "pipeline: flavor hours window end %q", fh.WindowEnd)
	}
	if end.Before(start) {
		return eris.Errorf("pipeline: flavor hours window %s..%s is inverted", fh.WindowStart, fh.WindowEnd)
	}

	q := source.NewQuery(source.DatasetTempHourly).
		FilterBounds(reg.Bounds()).
		FilterDate(start, end.Add(24*time.Hour-time.Second))
	snaps, err := p.source.Snapshots(ctx, q)
	if err != nil {
		return eris.Wrap(err, "pipeline: hourly snapshots")
	}

	f, err := indicator.FlavorHours(snaps, indicator.FlavorHoursParams{
		Band: "t2m",
		TMin: fh.TempMin,
		TMax: fh.TempMax,
	})
	if err != nil {
		return eris.Wrap(err, "pipeline: flavor hours")
	}
	put(IndFlavorHours, f)
	return nil
}

func (p *Pipeline) computeIndices(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	q := p.seasonQuery(source.DatasetSurfaceReflectance, reg).
		FilterMaxCloud(p.cfg.Analysis.MaxCloudPct)
	snaps, err := p.source.Snapshots(ctx, q)
	if err != nil {
		return eris.Wrap(err, "pipeline: reflectance snapshots")
	}

	refl := indicator.DefaultReflectanceParams()
	for _, it := range []struct {
		name    string
		compute func([]indicator.Snapshot, indicator.ReflectanceParams) (*raster.Field, error)
	}{
		{IndNDVI, indicator.NDVI},
		{IndNDWI, indicator.NDWI},
		{IndNDMI, indicator.NDMI},
	} {
		f, err := it.compute(snaps, refl)
		if err != nil {
			return eris.Wrapf(err, "pipeline: %s", it.name)
		}
		put(it.name, f)
	}
	return nil
}

func (p *Pipeline) computeTerrain(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	q := source.NewQuery(source.DatasetElevation).FilterBounds(reg.Bounds())
	dem, err := p.source.StaticField(ctx, q, "")
	if err != nil {
		return eris.Wrap(err, "pipeline: elevation raster")
	}
	// Slope is derived before clipping so border cells inside the region
	// still see their outside neighbors.
	put(IndSlope, indicator.Slope(dem))
	put(IndElevation, indicator.Elevation(dem))
	return nil
}

func (p *Pipeline) computeRadiation(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	year := p.cfg.Analysis.Year
	q := source.NewQuery(source.DatasetSolarRadiation).
		FilterBounds(reg.Bounds()).
		FilterDate(
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
		)
	snaps, err := p.source.Snapshots(ctx, q)
	if err != nil {
		return eris.Wrap(err, "pipeline: radiation snapshots")
	}
	f, err := indicator.Radiation(snaps, "surface_solar_radiation_downwards_sum")
	if err != nil {
		return eris.Wrap(err, "pipeline: radiation")
	}
	put(IndRadiation, f)
	return nil
}

func (p *Pipeline) computeStatics(ctx context.Context, reg *region.Region, put func(string, *raster.Field)) error {
	lc, err := p.source.StaticField(ctx, source.NewQuery(source.DatasetLandCover).FilterBounds(reg.Bounds()), "")
	if err != nil {
		return eris.Wrap(err, "pipeline: land cover raster")
	}
	put(IndLandCover, lc)

	ph, err := p.source.StaticField(ctx, source.NewQuery(source.DatasetSoilPH).FilterBounds(reg.Bounds()), "")
	if err != nil {
		return eris.Wrap(err, "pipeline: soil ph raster")
	}
	put(IndSoilPH, indicator.SoilPH(ph))
	return nil
}

// evaluate applies the configured threshold for one indicator.
func (p *Pipeline) evaluate(name string, f *raster.Field) (*raster.Mask, error) {
	t := p.cfg.Thresholds
	switch name {
	case IndGST:
		return suitability.EvaluateRange(f, t.GST.Lower, t.GST.Upper)
	case IndGDD:
		return suitability.EvaluateRange(f, t.GDD.Range.Lower, t.GDD.Range.Upper)
	case IndGSP:
		return suitability.EvaluateRange(f, t.GSP.Lower, t.GSP.Upper)
	case IndFlavorHours:
		return suitability.EvaluateMin(f, t.FlavorHours.MinHours), nil
	case IndSoilPH:
		return suitability.EvaluateRange(f, t.SoilPH.Lower, t.SoilPH.Upper)
	case IndNDVI:
		return suitability.EvaluateMin(f, t.NDVIMin), nil
	case IndNDWI:
		return suitability.EvaluateMax(f, t.NDWIMax), nil
	case IndNDMI:
		return suitability.EvaluateMin(f, t.NDMIMin), nil
	case IndSlope:
		return suitability.EvaluateRange(f, t.Slope.Lower, t.Slope.Upper)
	case IndElevation:
		return suitability.EvaluateRange(f, t.Elevation.Lower, t.Elevation.Upper)
	case IndRadiation:
		return suitability.EvaluateMin(f, t.RadiationMin), nil
	case IndLandCover:
		return suitability.EvaluateSet(f, t.LandCover), nil
	default:
		return nil, eris.Errorf("pipeline: no threshold for indicator %s", name)
	}
}

// thresholdJSON serializes the threshold applied to one indicator for the
// stored summary row.
func (p *Pipeline) thresholdJSON(name string) string {
	t := p.cfg.Thresholds
	var v any
	switch name {
	case IndGST:
		v = t.GST
	case IndGDD:
		v = t.GDD
	case IndGSP:
		v = t.GSP
	case IndFlavorHours:
		v = t.FlavorHours
	case IndSoilPH:
		v = t.SoilPH
	case IndNDVI:
		v = map[string]float64{"min": t.NDVIMin}
	case IndNDWI:
		v = map[string]float64{"max": t.NDWIMax}
	case IndNDMI:
		v = map[string]float64{"min": t.NDMIMin}
	case IndSlope:
		v = t.Slope
	case IndElevation:
		v = t.Elevation
	case IndRadiation:
		v = map[string]float64{"min": t.RadiationMin}
	case IndLandCover:
		v = map[string][]int{"allowed": t.LandCover}
	default:
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (p *Pipeline) summarize(layers map[string]Layer, composite *raster.Mask) []model.IndicatorSummary {
	summaries := make([]model.IndicatorSummary, 0, len(Indicators)+1)
	for _, name := range Indicators {
		layer := layers[name]
		fs := layer.Field.Summarize()
		ms := layer.Mask.Summarize()
		summaries = append(summaries, model.IndicatorSummary{
			Indicator:   name,
			Unit:        layer.Field.Unit,
			Min:         fs.Min,
			Max:         fs.Max,
			Mean:        fs.Mean,
			CellsTrue:   ms.True,
			CellsFalse:  ms.False,
			CellsNoData: ms.NoData,
			Thresholds:  p.thresholdJSON(name),
		})
	}
	cs := composite.Summarize()
	summaries = append(summaries, model.IndicatorSummary{
		Indicator:   IndComposite,
		CellsTrue:   cs.True,
		CellsFalse:  cs.False,
		CellsNoData: cs.NoData,
		Thresholds:  "{}",
	})
	return summaries
}
