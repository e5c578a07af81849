package inspect

import (
	"os"

	"github.com/kmviz/kmviz/internal/cli"
	"github.com/kmviz/kmviz/internal/visualize"
)

// Run loads and prints both arrays without plotting.
func Run(args []string) int {
	fs, opts := cli.NewFlagSet("inspect", os.Stderr)
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}

	cfg, err := opts.Load()
	if err != nil {
		return cli.Fail(os.Stderr, err)
	}
	deps := visualize.Deps{Stdout: os.Stdout}
	return cli.Execute(cfg, deps, os.Stderr, visualize.Inspect)
}
