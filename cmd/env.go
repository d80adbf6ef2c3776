package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/pipeline"
	"github.com/vitisgeo/terroir-cli/internal/region"
	"github.com/vitisgeo/terroir-cli/internal/source"
	"github.com/vitisgeo/terroir-cli/internal/store"
	"github.com/vitisgeo/terroir-cli/pkg/eogrid"
)

// env bundles the wired subsystems a command needs.
type env struct {
	Source   *source.Source
	Regions  region.Provider
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initSource() (*source.Source, error) {
	if cfg.Platform.APIKey == "" {
		return nil, eris.New("platform.api_key is required (TERROIR_PLATFORM_API_KEY)")
	}

	client := eogrid.NewClient(cfg.Platform.APIKey, eogrid.WithBaseURL(cfg.Platform.BaseURL))

	overrides := make([]source.Dataset, 0, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		overrides = append(overrides, source.Dataset{
			ID:         d.ID,
			Collection: d.Collection,
			Kind:       source.Kind(d.Kind),
			Bands:      d.Bands,
			Mirror:     d.Mirror,
		})
	}
	catalog, err := source.CatalogWithOverrides(overrides...)
	if err != nil {
		return nil, eris.Wrap(err, "build dataset catalog")
	}

	return source.New(client, catalog, source.Options{
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
		MaxAttempts:       cfg.Fetch.MaxAttempts,
	}), nil
}

func initRegions() (region.Provider, error) {
	if cfg.Region.ShapefilePath == "" {
		return nil, eris.New("region.shapefile_path is required")
	}
	return region.NewShapefileProvider(cfg.Region.ShapefilePath, cfg.Region.NameField), nil
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnv wires the full pipeline. withStore=false skips the database for
// read-only or dry-run commands.
func initEnv(ctx context.Context, withStore bool) (*env, error) {
	src, err := initSource()
	if err != nil {
		return nil, err
	}
	regions, err := initRegions()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if withStore {
		st, err = initStore(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &env{
		Source:   src,
		Regions:  regions,
		Store:    st,
		Pipeline: pipeline.New(cfg, src, regions, st),
	}, nil
}
