package main

import (
	"github.com/alecthomas/kong"
)

// CLI is assimilate command line interface
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run the filter over CSV observations for every scenario"`
	Simulate SimulateCmd `cmd:"" help:"Generate synthetic CSV observations for a scenario"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("assimilate"),
		kong.Description("Batch Kalman filtering of partially observed entities"),
		kong.HelpOptions{Compact: true, FlagsLast: true},
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
