// Package cli wires the diagnostic engine to the command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/iksora/roblog/internal/config"
)

// CLI is the root command structure for roblog
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format"`
	LogDir  string `short:"d" default:"${config_log_dir}" help:"Robot log directory"`
	Quiet   bool   `short:"q" help:"Suppress non-result output"`
	Verbose bool   `short:"v" help:"Show debug output (selection scoring, retries, internal state)"`

	// Commands
	Version  VersionCmd  `cmd:"" help:"Show version information"`
	Logs     LogsCmd     `cmd:"" help:"List log files in the log directory"`
	Diagnose DiagnoseCmd `cmd:"" help:"Diagnose an issue around a known time"`
	Agent    AgentCmd    `cmd:"" help:"Let the log agent pick relevant files for a problem description"`
	Analyze  AnalyzeCmd  `cmd:"" help:"Scan the whole log directory for anomalies and health"`
	Catalog  CatalogCmd  `cmd:"" help:"Show the log-type knowledge base"`
	Reports  ReportsCmd  `cmd:"" help:"List saved reports"`
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API server"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	LogDir  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
}

// NewGlobals creates a new Globals instance from CLI flags with config
// fallbacks.
func NewGlobals(cli *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:  cli.Format,
		LogDir:  cli.LogDir,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	if g.LogDir == "" {
		g.LogDir = cfg.LogDir
	}
	if !cli.Quiet && cfg.Quiet {
		g.Quiet = cfg.Quiet
	}
	if !cli.Verbose && cfg.Verbose {
		g.Verbose = cfg.Verbose
	}
	return g
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		io.WriteString(globals.Stdout, `{"type":"version","version":"`+Version+`","commit":"`+Commit+`"}`+"\n")
	} else {
		io.WriteString(globals.Stdout, "roblog version "+Version+" ("+Commit+")\n")
	}
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
