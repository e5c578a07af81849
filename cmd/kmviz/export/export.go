package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmviz/kmviz/internal/cli"
	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/render"
	"github.com/kmviz/kmviz/internal/visualize"
)

// Run renders the plot to a file without opening a window.
func Run(args []string) int {
	fs, opts := cli.NewFlagSet("export", os.Stderr)
	fs.StringVar(&opts.OutputPath, "out", "", "Output file: "+strings.Join(render.Formats, ", "))
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}

	cfg, err := opts.Load()
	if err != nil {
		return cli.Fail(os.Stderr, err)
	}
	cfg.Render.Sink = config.SinkFile
	if cfg.Render.OutputPath == "" {
		return cli.Fail(os.Stderr, errors.New("-out is required"))
	}
	if ext := filepath.Ext(cfg.Render.OutputPath); !render.SupportedFormat(ext) {
		return cli.Fail(os.Stderr, errors.New("unsupported output format "+ext))
	}

	deps := visualize.Deps{Stdout: os.Stdout}
	return cli.Execute(cfg, deps, os.Stderr, visualize.Run)
}
