// Package visualize runs one end-to-end pass: load the dataset and the
// centroids, print their shapes and the centroid values, then plot both.
package visualize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kmviz/kmviz/internal/cache"
	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/loader"
	"github.com/kmviz/kmviz/internal/logging"
	"github.com/kmviz/kmviz/internal/metrics"
	"github.com/kmviz/kmviz/internal/render"
	"github.com/kmviz/kmviz/internal/vector"
	"github.com/kmviz/kmviz/pkg/objectstore"
)

// Deps are the collaborators of a run. Zero fields are filled from the
// config and the process environment.
type Deps struct {
	Store  objectstore.Store
	Stdout io.Writer
	Logger *logging.Logger
	// Sink overrides the configured sink.
	Sink render.Sink
	// Window builds the interactive sink when the config asks for one.
	Window render.WindowFactory
	// Getenv is used for display detection.
	Getenv func(string) string
}

// Arrays holds the two loaded matrices.
type Arrays struct {
	Dataset   *vector.Matrix
	Centroids *vector.Matrix
}

func (d *Deps) fill(cfg *config.Config) error {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.Store == nil {
		store, err := OpenStore(cfg.Source)
		if err != nil {
			return err
		}
		d.Store = store
	}
	return nil
}

// OpenStore builds the object store described by cfg. Remote sources are
// fronted by a disk cache when CacheDir is set.
func OpenStore(cfg config.SourceConfig) (objectstore.Store, error) {
	store, err := objectstore.New(objectstore.Config{
		Type:      cfg.Type,
		Endpoint:  cfg.Endpoint,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
		RootPath:  cfg.RootPath,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.Type, err)
	}
	if cfg.CacheDir == "" || cfg.Type == "" || cfg.Type == objectstore.TypeFile {
		return store, nil
	}

	disk, err := cache.NewDiskCache(cache.DiskConfig{
		RootPath: cfg.CacheDir,
		MaxBytes: int64(cfg.CacheMaxMB) << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	cached, err := cache.NewStore(store, disk)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cached, nil
}

// Run loads, prints, and renders. The sink is resolved before anything is
// loaded, and any load failure returns before the sink is invoked.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := deps.fill(cfg); err != nil {
		return err
	}
	ctx = runContext(ctx)

	sink := deps.Sink
	if sink == nil {
		var err error
		sink, err = render.Choose(cfg.Render, deps.Window, deps.Getenv, deps.Logger.WithContext(ctx))
		if err != nil {
			return err
		}
	}

	arrays, err := Load(ctx, cfg, deps.Store, deps.Logger)
	if err != nil {
		return err
	}
	if err := Print(deps.Stdout, arrays); err != nil {
		return err
	}

	fig, err := render.NewFigure(arrays.Dataset, arrays.Centroids, cfg.Render)
	if err != nil {
		return err
	}
	return renderFigure(logging.ContextWithStage(ctx, logging.StageRender), sink, fig, deps.Logger)
}

// Inspect loads and prints without rendering.
func Inspect(ctx context.Context, cfg *config.Config, deps Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := deps.fill(cfg); err != nil {
		return err
	}
	ctx = runContext(ctx)

	arrays, err := Load(ctx, cfg, deps.Store, deps.Logger)
	if err != nil {
		return err
	}
	return Print(deps.Stdout, arrays)
}

func runContext(ctx context.Context) context.Context {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
	}
	return logging.ContextWithRunStart(ctx, time.Now())
}

// Load reads the dataset and then the centroids. The logger picks up the
// run id from ctx.
func Load(ctx context.Context, cfg *config.Config, store objectstore.Store, logger *logging.Logger) (*Arrays, error) {
	order, err := vector.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return nil, err
	}
	l := loader.New(store,
		loader.WithByteOrder(order),
		loader.WithLogger(logger),
	)

	dataset, err := l.Load(ctx, loader.KindDataset, cfg.DatasetPath, cfg.DatasetRows, cfg.DatasetCols)
	if err != nil {
		return nil, err
	}
	centroids, err := l.Load(ctx, loader.KindCentroids, cfg.CentroidPath, cfg.CentroidRows, cfg.CentroidCols)
	if err != nil {
		return nil, err
	}
	return &Arrays{Dataset: dataset, Centroids: centroids}, nil
}

// Print writes the dataset shape, the centroid shape, and the centroid
// values, one per line.
func Print(w io.Writer, a *Arrays) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n",
		a.Dataset.ShapeString(),
		a.Centroids.ShapeString(),
		a.Centroids.String(),
	)
	return err
}

func renderFigure(ctx context.Context, sink render.Sink, fig *render.Figure, logger *logging.Logger) error {
	logger = logger.WithContext(ctx).With(slog.String("sink", sink.Name()))

	for i, s := range fig.Series {
		n := fig.Outside(i)
		metrics.SetPointsOutside(s.Label, n)
		if n > 0 {
			logger.Warn("points outside axis limits",
				slog.String("series", s.Label),
				slog.Int("count", n),
				slog.Int("total", len(s.Points)),
			)
		}
	}

	start := time.Now()
	err := sink.Render(ctx, fig)
	elapsed := time.Since(start)
	metrics.ObserveRender(sink.Name(), elapsed.Seconds(), err)

	if err != nil {
		logger.Error("render failed", slog.String("error", err.Error()))
		return fmt.Errorf("render %s: %w", sink.Name(), err)
	}
	logger.Info("render complete",
		slog.Float64("render_ms", float64(elapsed.Microseconds())/1000),
		slog.Float64("run_ms", logging.ElapsedMs(ctx)),
	)
	return nil
}
