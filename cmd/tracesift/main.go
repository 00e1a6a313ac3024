package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/tracesift/internal/cli"
	"github.com/vburojevic/tracesift/internal/config"
	"github.com/vburojevic/tracesift/internal/logging"
)

func main() {
	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values seed flag defaults; explicit flags override them
	ctx := kong.Parse(&c,
		kong.Name("tracesift"),
		kong.Description("Classify and parse stack traces and logs from files or stdin.\n\nReads raw text, JSON lines, JSON arrays, CSV or TSV exports and emits one NDJSON record per input."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.Vars(cfg),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if logger, err := logging.New(globals.Verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
	} else {
		globals.Logger = logger
	}

	err = ctx.Run(globals)
	_ = globals.Logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
