package show

import (
	"os"

	"github.com/kmviz/kmviz/internal/cli"
	"github.com/kmviz/kmviz/internal/render/window"
	"github.com/kmviz/kmviz/internal/visualize"
)

// Run loads both arrays, prints them, and renders with the configured sink
// (a desktop window by default).
func Run(args []string) int {
	fs, opts := cli.NewFlagSet("show", os.Stderr)
	fs.StringVar(&opts.Sink, "sink", "", "Sink: window, file or serve (overrides config)")
	fs.StringVar(&opts.OutputPath, "out", "", "Output file for the file sink")
	fs.StringVar(&opts.FallbackPath, "fallback", "", "File to export to when no display is available")
	fs.StringVar(&opts.ListenAddr, "addr", "", "Listen address for the serve sink")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}

	cfg, err := opts.Load()
	if err != nil {
		return cli.Fail(os.Stderr, err)
	}
	deps := visualize.Deps{Stdout: os.Stdout, Window: window.New}
	return cli.Execute(cfg, deps, os.Stderr, visualize.Run)
}
