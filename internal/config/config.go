package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kmviz/kmviz/internal/vector"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Sink names how the plot is delivered.
type Sink string

const (
	// SinkWindow opens a blocking desktop window.
	SinkWindow Sink = "window"
	// SinkFile writes the plot to RenderConfig.OutputPath.
	SinkFile Sink = "file"
	// SinkServe serves an interactive page on RenderConfig.ListenAddr.
	SinkServe Sink = "serve"
)

// IsValid returns true if the sink is a recognized value.
func (s Sink) IsValid() bool {
	switch s {
	case SinkWindow, SinkFile, SinkServe:
		return true
	default:
		return false
	}
}

// Config is the full configuration of one run. The shape fields must match
// what the producing program wrote; the files carry no header.
type Config struct {
	DatasetPath  string `json:"dataset_path" toml:"dataset_path"`
	DatasetRows  int    `json:"dataset_rows" toml:"dataset_rows"`
	DatasetCols  int    `json:"dataset_cols" toml:"dataset_cols"`
	CentroidPath string `json:"centroid_path" toml:"centroid_path"`
	CentroidRows int    `json:"centroid_rows" toml:"centroid_rows"`
	CentroidCols int    `json:"centroid_cols" toml:"centroid_cols"`
	// ByteOrder is native, little or big.
	ByteOrder string `json:"byte_order" toml:"byte_order"`

	Source  SourceConfig  `json:"source" toml:"source"`
	Render  RenderConfig  `json:"render" toml:"render"`
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`
	Log     LogConfig     `json:"log" toml:"log"`
}

// SourceConfig selects where the array files are read from.
type SourceConfig struct {
	// Type is file or s3.
	Type      string `json:"type" toml:"type"`
	RootPath  string `json:"root_path" toml:"root_path"`
	Endpoint  string `json:"endpoint" toml:"endpoint"`
	Bucket    string `json:"bucket" toml:"bucket"`
	AccessKey string `json:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" toml:"secret_key"`
	Region    string `json:"region" toml:"region"`
	UseSSL    bool   `json:"use_ssl" toml:"use_ssl"`
	// CacheDir keeps a local copy of remote objects keyed by etag so later
	// runs map the file instead of downloading it. Empty disables caching.
	CacheDir   string `json:"cache_dir" toml:"cache_dir"`
	CacheMaxMB int    `json:"cache_max_mb" toml:"cache_max_mb"`
}

// RenderConfig controls the plot and where it goes.
type RenderConfig struct {
	Sink Sink `json:"sink" toml:"sink"`
	// OutputPath is the export target for the file sink. The extension
	// picks the format: .png, .jpg, .svg, .pdf or .html.
	OutputPath string `json:"output_path" toml:"output_path"`
	// FallbackPath is used when the window sink has no display.
	// Empty means a missing display is a fatal error.
	FallbackPath string `json:"fallback_path" toml:"fallback_path"`
	ListenAddr   string `json:"listen_addr" toml:"listen_addr"`
	Title        string `json:"title" toml:"title"`
	WidthPx      int    `json:"width_px" toml:"width_px"`
	HeightPx     int    `json:"height_px" toml:"height_px"`
	DPI          int    `json:"dpi" toml:"dpi"`

	XMin float64 `json:"x_min" toml:"x_min"`
	XMax float64 `json:"x_max" toml:"x_max"`
	YMin float64 `json:"y_min" toml:"y_min"`
	YMax float64 `json:"y_max" toml:"y_max"`
}

// MetricsConfig holds metrics output configuration.
type MetricsConfig struct {
	// TextfilePath receives the metrics in text format at exit. Empty disables it.
	TextfilePath string `json:"textfile_path" toml:"textfile_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
}

// Default mirrors the shapes and file names of the k-means producer:
// N=100 points and K=5 centroids in D=2 dimensions.
func Default() *Config {
	return &Config{
		DatasetPath:  "X_data.bin",
		DatasetRows:  100,
		DatasetCols:  2,
		CentroidPath: "centroid_data.bin",
		CentroidRows: 5,
		CentroidCols: 2,
		ByteOrder:    "native",
		Source: SourceConfig{
			Type:       "file",
			RootPath:   ".",
			Region:     "us-east-1",
			CacheMaxMB: 1024,
		},
		Render: RenderConfig{
			Sink:       SinkWindow,
			ListenAddr: ":8080",
			Title:      "k-means",
			WidthPx:    640,
			HeightPx:   480,
			DPI:        100,
			XMin:       -2,
			XMax:       2,
			YMin:       -2,
			YMax:       2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (or $KMVIZ_CONFIG) over the defaults, then applies
// KMVIZ_* environment overrides. Files ending in .toml are parsed as TOML,
// anything else as JSON.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("KMVIZ_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if env := os.Getenv("KMVIZ_DATASET_PATH"); env != "" {
		cfg.DatasetPath = env
	}
	if env := os.Getenv("KMVIZ_CENTROID_PATH"); env != "" {
		cfg.CentroidPath = env
	}
	if env := os.Getenv("KMVIZ_DATASET_ROWS"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.DatasetRows = n
		}
	}
	if env := os.Getenv("KMVIZ_DATASET_COLS"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.DatasetCols = n
		}
	}
	if env := os.Getenv("KMVIZ_CENTROID_ROWS"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.CentroidRows = n
		}
	}
	if env := os.Getenv("KMVIZ_CENTROID_COLS"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.CentroidCols = n
		}
	}
	if env := os.Getenv("KMVIZ_BYTE_ORDER"); env != "" {
		cfg.ByteOrder = env
	}

	// Source configuration
	if env := os.Getenv("KMVIZ_SOURCE_TYPE"); env != "" {
		cfg.Source.Type = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_ROOT"); env != "" {
		cfg.Source.RootPath = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_ENDPOINT"); env != "" {
		cfg.Source.Endpoint = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_BUCKET"); env != "" {
		cfg.Source.Bucket = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_ACCESS_KEY"); env != "" {
		cfg.Source.AccessKey = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_SECRET_KEY"); env != "" {
		cfg.Source.SecretKey = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_REGION"); env != "" {
		cfg.Source.Region = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_USE_SSL"); env != "" {
		cfg.Source.UseSSL = env == "true" || env == "1"
	}
	if env := os.Getenv("KMVIZ_SOURCE_CACHE_DIR"); env != "" {
		cfg.Source.CacheDir = env
	}
	if env := os.Getenv("KMVIZ_SOURCE_CACHE_MAX_MB"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.Source.CacheMaxMB = n
		}
	}

	// Render configuration
	if env := os.Getenv("KMVIZ_RENDER_SINK"); env != "" {
		cfg.Render.Sink = Sink(env)
	}
	if env := os.Getenv("KMVIZ_RENDER_OUTPUT"); env != "" {
		cfg.Render.OutputPath = env
	}
	if env := os.Getenv("KMVIZ_RENDER_FALLBACK"); env != "" {
		cfg.Render.FallbackPath = env
	}
	if env := os.Getenv("KMVIZ_RENDER_LISTEN_ADDR"); env != "" {
		cfg.Render.ListenAddr = env
	}
	if env := os.Getenv("KMVIZ_RENDER_TITLE"); env != "" {
		cfg.Render.Title = env
	}
	if env := os.Getenv("KMVIZ_RENDER_WIDTH_PX"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.Render.WidthPx = n
		}
	}
	if env := os.Getenv("KMVIZ_RENDER_HEIGHT_PX"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.Render.HeightPx = n
		}
	}
	if env := os.Getenv("KMVIZ_RENDER_DPI"); env != "" {
		if n, err := parseIntEnv(env); err == nil {
			cfg.Render.DPI = n
		}
	}

	if env := os.Getenv("KMVIZ_METRICS_TEXTFILE"); env != "" {
		cfg.Metrics.TextfilePath = env
	}
	if env := os.Getenv("KMVIZ_LOG_LEVEL"); env != "" {
		cfg.Log.Level = env
	}
	if env := os.Getenv("KMVIZ_LOG_FORMAT"); env != "" {
		cfg.Log.Format = env
	}

	return cfg, nil
}

// Validate checks that the config describes a loadable, plottable run.
func (c *Config) Validate() error {
	if c.DatasetPath == "" {
		return fmt.Errorf("%w: dataset_path is empty", ErrInvalidConfig)
	}
	if c.CentroidPath == "" {
		return fmt.Errorf("%w: centroid_path is empty", ErrInvalidConfig)
	}
	if c.DatasetRows <= 0 || c.DatasetCols <= 0 {
		return fmt.Errorf("%w: dataset shape (%d, %d) must be positive", ErrInvalidConfig, c.DatasetRows, c.DatasetCols)
	}
	if c.CentroidRows <= 0 || c.CentroidCols <= 0 {
		return fmt.Errorf("%w: centroid shape (%d, %d) must be positive", ErrInvalidConfig, c.CentroidRows, c.CentroidCols)
	}
	if c.DatasetCols != c.CentroidCols {
		return fmt.Errorf("%w: dataset has %d columns but centroids have %d", ErrInvalidConfig, c.DatasetCols, c.CentroidCols)
	}
	if c.DatasetCols < 2 {
		return fmt.Errorf("%w: a 2D scatter plot needs at least 2 columns, got %d", ErrInvalidConfig, c.DatasetCols)
	}
	if _, err := vector.ParseByteOrder(c.ByteOrder); err != nil {
		return fmt.Errorf("%w: byte_order: %v", ErrInvalidConfig, err)
	}
	switch c.Source.Type {
	case "", "file", "s3":
	default:
		return fmt.Errorf("%w: source.type %q (expected file or s3)", ErrInvalidConfig, c.Source.Type)
	}
	if c.Source.Type == "s3" && c.Source.Bucket == "" {
		return fmt.Errorf("%w: source.bucket is required for s3", ErrInvalidConfig)
	}
	if c.Source.CacheDir != "" && c.Source.CacheMaxMB <= 0 {
		return fmt.Errorf("%w: source.cache_max_mb must be positive", ErrInvalidConfig)
	}
	return c.Render.validate()
}

func (r RenderConfig) validate() error {
	if !r.Sink.IsValid() {
		return fmt.Errorf("%w: render.sink %q", ErrInvalidConfig, r.Sink)
	}
	if r.Sink == SinkFile && r.OutputPath == "" {
		return fmt.Errorf("%w: render.output_path is required for the file sink", ErrInvalidConfig)
	}
	if r.Sink == SinkServe && r.ListenAddr == "" {
		return fmt.Errorf("%w: render.listen_addr is required for the serve sink", ErrInvalidConfig)
	}
	if r.WidthPx <= 0 || r.HeightPx <= 0 || r.DPI <= 0 {
		return fmt.Errorf("%w: render size %dx%d at %d dpi", ErrInvalidConfig, r.WidthPx, r.HeightPx, r.DPI)
	}
	if !(r.XMin < r.XMax) || !(r.YMin < r.YMax) {
		return fmt.Errorf("%w: axis limits [%g, %g]x[%g, %g]", ErrInvalidConfig, r.XMin, r.XMax, r.YMin, r.YMax)
	}
	return nil
}

func parseIntEnv(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
