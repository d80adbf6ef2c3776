package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/pipeline"
	"github.com/vitisgeo/terroir-cli/internal/render"
	"github.com/vitisgeo/terroir-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline once and serve overlays and run data over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Region.Name == "" {
			return eris.New("region name is required (region.name)")
		}

		e, err := initEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Pipeline.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(res, e.Store),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			if err := drainServer(srv); err != nil {
				zap.L().Error("server shutdown failed", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("region", res.Region.Name),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// drainServer shuts the server down on a fresh context so in-flight requests
// get a grace period; the signal context is already canceled by the time
// shutdown starts.
func drainServer(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newRouter serves the completed run: JSON summaries under /api and PNG
// overlays under /overlays.
func newRouter(res *pipeline.Result, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "region": res.Region.Name})
	})

	r.Get("/api/indicators", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, res.Summaries)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusOK, []model.Run{})
			return
		}
		runs, err := st.ListRuns(req.Context(), store.RunFilter{})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/overlays/{layer}.png", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "layer")
		img, err := overlayImage(res, name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := render.WritePNG(w, img); err != nil {
			zap.L().Error("overlay encode failed", zap.String("layer", name), zap.Error(err))
		}
	})

	return r
}

// overlayImage maps an overlay name to its rendered image. A "_mask" suffix
// selects the thresholded mask instead of the field.
func overlayImage(res *pipeline.Result, name string) (image.Image, error) {
	switch name {
	case pipeline.IndComposite:
		return render.PaintMask(res.Composite), nil
	case "score":
		ramp, _ := render.RampByName("suitability")
		return render.PaintField(res.Score, ramp), nil
	}

	if base, ok := strings.CutSuffix(name, "_mask"); ok {
		if layer, found := res.Layers[base]; found {
			return render.PaintMask(layer.Mask), nil
		}
	}
	if layer, found := res.Layers[name]; found {
		return render.PaintField(layer.Field, rampFor(name)), nil
	}
	return nil, eris.Errorf("no overlay named %q", name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
