package source

import (
	"context"
	"errors"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vitisgeo/terroir-cli/internal/indicator"
	"github.com/vitisgeo/terroir-cli/internal/raster"
	"github.com/vitisgeo/terroir-cli/internal/resilience"
	"github.com/vitisgeo/terroir-cli/pkg/eogrid"
)

// Options tunes the fetch layer.
type Options struct {
	// RequestsPerSecond throttles scene downloads; zero means 2 rps.
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       int
}

// Source executes queries against the platform and converts exported scenes
// into snapshots.
type Source struct {
	client  eogrid.Client
	catalog *Catalog
	mirror  *MirrorFetcher
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// New creates a Source over the given client and catalog.
func New(client eogrid.Client, catalog *Catalog, opts Options) *Source {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 4
	}
	retryCfg := resilience.DefaultRetryConfig("eogrid")
	if opts.MaxAttempts > 0 {
		retryCfg.MaxAttempts = opts.MaxAttempts
	}
	retryCfg.ShouldRetry = shouldRetryFetch

	return &Source{
		client:  client,
		catalog: catalog,
		mirror:  NewMirrorFetcher(),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		retry:   retryCfg,
	}
}

// shouldRetryFetch treats platform 429/5xx as transient alongside the usual
// network failures.
func shouldRetryFetch(err error) bool {
	var apiErr *eogrid.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

// Snapshots executes a query and returns one snapshot per matching scene,
// ordered as the platform lists them. An empty result is returned as an
// empty slice; indicator computers decide whether that is an error.
func (s *Source) Snapshots(ctx context.Context, q Query) ([]indicator.Snapshot, error) {
	ds, err := s.catalog.Lookup(q.Dataset)
	if err != nil {
		return nil, err
	}

	bands := q.Bands
	if len(bands) == 0 {
		bands = ds.Bands
	}

	req := eogrid.ListScenesRequest{
		Collection: ds.Collection,
		Start:      q.Start,
		End:        q.End,
		MonthMin:   q.MonthMin,
		MonthMax:   q.MonthMax,
		BBox:       q.BBox,
		HasBBox:    q.HasBBox,
		MaxCloud:   q.MaxCloud,
	}

	scenes, err := resilience.Retry(ctx, s.retry, func(ctx context.Context) ([]eogrid.SceneMeta, error) {
		return s.client.ListScenes(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: list scenes for %s", q.Dataset)
	}

	zap.L().Debug("scene listing",
		zap.String("dataset", q.Dataset),
		zap.Int("scenes", len(scenes)),
	)

	snaps := make([]indicator.Snapshot, 0, len(scenes))
	for _, meta := range scenes {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "source: rate limiter")
		}
		data, err := resilience.Retry(ctx, s.retry, func(ctx context.Context) (*eogrid.SceneData, error) {
			return s.fetchScene(ctx, ds, meta.ID, bands)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "source: fetch scene %s", meta.ID)
		}
		snap, err := toSnapshot(data)
		if err != nil {
			return nil, eris.Wrapf(err, "source: scene %s", meta.ID)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// StaticField fetches the single raster of a static dataset and returns the
// named band (or the dataset's first default band when name is empty).
func (s *Source) StaticField(ctx context.Context, q Query, band string) (*raster.Field, error) {
	ds, err := s.catalog.Lookup(q.Dataset)
	if err != nil {
		return nil, err
	}
	if ds.Kind != KindStatic {
		return nil, eris.Errorf("source: dataset %s is not static", q.Dataset)
	}
	if band == "" {
		if len(ds.Bands) == 0 {
			return nil, eris.Errorf("source: dataset %s has no default band", q.Dataset)
		}
		band = ds.Bands[0]
	}

	snaps, err := s.Snapshots(ctx, q.SelectBands(band))
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, eris.Errorf("source: static dataset %s returned no raster", q.Dataset)
	}
	return snaps[0].Band(band)
}

// fetchScene downloads scene data, preferring the dataset's FTP mirror when
// one is configured.
func (s *Source) fetchScene(ctx context.Context, ds Dataset, sceneID string, bands []string) (*eogrid.SceneData, error) {
	if ds.Mirror != "" {
		data, err := s.mirror.FetchScene(ctx, ds.Mirror, sceneID)
		if err == nil {
			return data, nil
		}
		zap.L().Warn("mirror fetch failed, falling back to api",
			zap.String("dataset", ds.ID),
			zap.String("scene", sceneID),
			zap.Error(err),
		)
	}
	return s.client.FetchScene(ctx, ds.Collection, sceneID, bands)
}

// toSnapshot converts an exported scene into raster fields, mapping null
// samples to no-data.
func toSnapshot(data *eogrid.SceneData) (indicator.Snapshot, error) {
	g := raster.Grid{
		Cols:     data.Grid.Cols,
		Rows:     data.Grid.Rows,
		MinX:     data.Grid.MinX,
		MinY:     data.Grid.MinY,
		CellSize: data.Grid.CellSize,
		SRID:     data.Grid.SRID,
	}
	snap := indicator.Snapshot{
		Time:  data.Meta.Time,
		Bands: make(map[string]*raster.Field, len(data.Bands)),
	}
	for name, samples := range data.Bands {
		vals := make([]float64, len(samples))
		for i, p := range samples {
			if p == nil {
				vals[i] = math.NaN()
			} else {
				vals[i] = *p
			}
		}
		f, err := raster.FromValues(g, "", vals)
		if err != nil {
			return indicator.Snapshot{}, err
		}
		snap.Bands[name] = f
	}
	return snap, nil
}
