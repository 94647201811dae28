package main

import (
	"github.com/alecthomas/kong"

	"github.com/arnavsurve/popform/cmd/cli"
)

var version = "dev"

var CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit."`

	Run  cli.RunCmd  `cmd:"" default:"withargs" help:"Fill the pages described by a configuration file."`
	Lint cli.LintCmd `cmd:"" help:"Validate a configuration file without launching a browser."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("popform"),
		kong.Description("Fill and submit web forms from a YAML configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run())
}
