package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/iksora/roblog/internal/cli"
	"github.com/iksora/roblog/internal/config"
)

const quickStart = `roblog - robot log correlation and diagnostics

START HERE (this is the command you want):
  roblog diagnose -t "2024-01-15 01:01:31" -m "robot stopped moving"

Flags:
  -t    Issue time (YYYY-MM-DD HH:MM:SS)
  -m    What went wrong, in your own words

Other useful commands:
  roblog agent "robot veered off path"     Let the agent pick the right logs
  roblog analyze                           Anomaly scan and health score
  roblog logs                              List log files
  roblog serve                             Run the HTTP API
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":       cfg.Format,
		"config_log_dir":      cfg.LogDir,
		"config_window":       strconv.Itoa(cfg.Defaults.WindowMinutes),
		"config_agent_window": strconv.Itoa(cfg.Defaults.AgentWindowMinutes),
		"config_port":         strconv.Itoa(cfg.ListenPort),
	}

	ctx := kong.Parse(&c,
		kong.Name("roblog"),
		kong.Description("Robot log correlation and diagnostics\n\nSTART HERE: roblog diagnose -t <issue_time>"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobals(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
