package serve

import (
	"os"

	"github.com/kmviz/kmviz/internal/cli"
	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/visualize"
)

// Run serves the plot as an interactive page until interrupted.
func Run(args []string) int {
	fs, opts := cli.NewFlagSet("serve", os.Stderr)
	fs.StringVar(&opts.ListenAddr, "addr", "", "Listen address (overrides config)")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}

	cfg, err := opts.Load()
	if err != nil {
		return cli.Fail(os.Stderr, err)
	}
	cfg.Render.Sink = config.SinkServe

	deps := visualize.Deps{Stdout: os.Stdout}
	return cli.Execute(cfg, deps, os.Stderr, visualize.Run)
}
