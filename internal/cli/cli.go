// Package cli holds the flag handling and process plumbing shared by the
// kmviz subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/logging"
	"github.com/kmviz/kmviz/internal/metrics"
	"github.com/kmviz/kmviz/internal/visualize"
)

// Options are the flags common to every run subcommand. Set flags override
// the config file and environment.
type Options struct {
	ConfigPath   string
	DatasetPath  string
	CentroidPath string
	ByteOrder    string
	Sink         string
	OutputPath   string
	FallbackPath string
	ListenAddr   string
	LogLevel     string
}

// NewFlagSet returns a flag set for the named subcommand with the common
// flags registered.
func NewFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *Options) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &Options{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to config file (.json or .toml)")
	fs.StringVar(&opts.DatasetPath, "dataset", "", "Dataset file (overrides config)")
	fs.StringVar(&opts.CentroidPath, "centroids", "", "Centroid file (overrides config)")
	fs.StringVar(&opts.ByteOrder, "byte-order", "", "Element byte order: native, little or big")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	return fs, opts
}

// Parse parses args into fs. When ok is false the caller should exit with
// code: 0 after -h, 1 for a bad flag.
func Parse(fs *flag.FlagSet, args []string) (code int, ok bool) {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return 0, true
	case errors.Is(err, flag.ErrHelp):
		return 0, false
	default:
		return 1, false
	}
}

// Load reads the config and applies any flags that were set.
func (o *Options) Load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.DatasetPath != "" {
		cfg.DatasetPath = o.DatasetPath
	}
	if o.CentroidPath != "" {
		cfg.CentroidPath = o.CentroidPath
	}
	if o.ByteOrder != "" {
		cfg.ByteOrder = o.ByteOrder
	}
	if o.Sink != "" {
		cfg.Render.Sink = config.Sink(o.Sink)
	}
	if o.OutputPath != "" {
		cfg.Render.OutputPath = o.OutputPath
	}
	if o.FallbackPath != "" {
		cfg.Render.FallbackPath = o.FallbackPath
	}
	if o.ListenAddr != "" {
		cfg.Render.ListenAddr = o.ListenAddr
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return cfg, nil
}

// RunFunc is one subcommand body.
type RunFunc func(ctx context.Context, cfg *config.Config, deps visualize.Deps) error

// Execute runs fn with a logger built from cfg and a context cancelled on
// SIGINT or SIGTERM. It returns the process exit code.
func Execute(cfg *config.Config, deps visualize.Deps, stderr io.Writer, fn RunFunc) int {
	logger, err := logging.NewWithOptions(stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return Fail(stderr, err)
	}
	deps.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := fn(ctx, cfg, deps)

	if path := cfg.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}
	if runErr != nil {
		return Fail(stderr, runErr)
	}
	return 0
}

// Fail prints err the way every subcommand reports a fatal error and
// returns exit code 1.
func Fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
