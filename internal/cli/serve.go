package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/iksora/roblog/internal/report"
	"github.com/iksora/roblog/internal/server"
)

// ServeCmd runs the HTTP API server
type ServeCmd struct {
	Port int `short:"p" default:"${config_port}" help:"Port to listen on"`
}

// Run executes the serve command
func (c *ServeCmd) Run(globals *Globals) error {
	eng, err := buildEngine(globals)
	if err != nil {
		return outputError(globals, codeRegistryLoad, err.Error())
	}

	store, err := report.NewStore(globals.Config.ReportsDir)
	if err != nil {
		emitWarning(globals, "reports disabled: "+err.Error())
		store = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var out = globals.Stdout
	if globals.Quiet {
		out = nil
	}
	if err := server.Start(ctx, server.StartOpts{
		Config:       globals.Config,
		Reader:       eng.reader,
		Orchestrator: eng.orchestrator,
		Agent:        eng.agent,
		Classifier:   eng.classifier,
		Reports:      store,
		Port:         c.Port,
		Out:          out,
	}); err != nil {
		return outputError(globals, codeServerFailed, err.Error())
	}
	return nil
}
