package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kmviz/kmviz/cmd/kmviz/export"
	"github.com/kmviz/kmviz/cmd/kmviz/inspect"
	"github.com/kmviz/kmviz/cmd/kmviz/serve"
	"github.com/kmviz/kmviz/cmd/kmviz/show"
	"github.com/kmviz/kmviz/cmd/kmviz/version"
)

func main() {
	// With no command, or only flags, behave like show.
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") && !isHelp(os.Args[1]) {
		os.Exit(show.Run(os.Args[1:]))
	}

	switch os.Args[1] {
	case "show":
		os.Exit(show.Run(os.Args[2:]))
	case "export":
		os.Exit(export.Run(os.Args[2:]))
	case "serve":
		os.Exit(serve.Run(os.Args[2:]))
	case "inspect":
		os.Exit(inspect.Run(os.Args[2:]))
	case "version":
		version.Run()
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help"
}

func printUsage() {
	fmt.Println(`kmviz - k-means dataset and centroid viewer

Usage:
  kmviz [command] [options]

Commands:
  show      Load, print and plot (default)
  export    Write the plot to a .png, .jpg, .svg, .pdf or .html file
  serve     Serve the plot as an interactive page
  inspect   Load and print shapes and centroids only
  version   Print version information
  help      Show this help message

Run 'kmviz <command> --help' for more information on a command.`)
}
