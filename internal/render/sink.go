package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/logging"
)

// ErrDisplayBackendUnavailable is returned when an interactive window was
// requested but no display can be opened and no fallback file is configured.
var ErrDisplayBackendUnavailable = errors.New("display backend unavailable")

// Sink delivers a figure somewhere.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Render blocks until the figure has been delivered or ctx is done.
	Render(ctx context.Context, fig *Figure) error
}

// WindowFactory constructs the interactive window sink.
type WindowFactory func(title string) Sink

// DisplayAvailable reports whether an interactive window can be opened on
// the given OS with the given environment.
func DisplayAvailable(goos string, getenv func(string) string) bool {
	switch goos {
	case "darwin", "windows", "ios", "android", "js":
		return true
	}
	return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
}

// Choose resolves the configured sink. A window request on a headless host
// falls back to a file export when FallbackPath is set.
func Choose(cfg config.RenderConfig, newWindow WindowFactory, getenv func(string) string, logger *logging.Logger) (Sink, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	switch cfg.Sink {
	case config.SinkFile:
		return &FileExport{Path: cfg.OutputPath}, nil
	case config.SinkServe:
		return &Server{Addr: cfg.ListenAddr, Logger: logger}, nil
	case config.SinkWindow, "":
		if newWindow != nil && DisplayAvailable(runtime.GOOS, getenv) {
			return newWindow(cfg.Title), nil
		}
		if cfg.FallbackPath != "" {
			logger.Warn("no display available, exporting to file instead",
				"path", cfg.FallbackPath,
			)
			return &FileExport{Path: cfg.FallbackPath}, nil
		}
		return nil, ErrDisplayBackendUnavailable
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", config.ErrInvalidConfig, cfg.Sink)
	}
}
