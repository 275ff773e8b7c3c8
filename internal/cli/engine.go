package cli

import (
	"time"

	"github.com/mattn/go-isatty"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/aiclient"
	"github.com/iksora/roblog/internal/anomaly"
	"github.com/iksora/roblog/internal/correlate"
	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/output"
)

// engine bundles the collaborators every diagnostic command needs.
// Built per-invocation from globals; nothing is shared across runs.
type engine struct {
	reader       *logsource.Reader
	correlator   *correlate.Correlator
	agent        *agent.Agent
	classifier   *anomaly.Classifier
	orchestrator *diagnose.Orchestrator
}

// buildEngine constructs the engine from configuration, honoring the
// optional on-disk overrides for the anomaly registry and log catalog.
func buildEngine(globals *Globals) (*engine, error) {
	cfg := globals.Config

	registry := anomaly.DefaultRegistry()
	if cfg.AnomalyRegistry != "" {
		r, err := anomaly.LoadRegistryFile(cfg.AnomalyRegistry)
		if err != nil {
			return nil, err
		}
		registry = r
		globals.Debug("loaded anomaly registry override from %s", cfg.AnomalyRegistry)
	}

	catalog := agent.DefaultCatalog()
	if cfg.LogCatalog != "" {
		c, err := agent.LoadCatalogFile(cfg.LogCatalog)
		if err != nil {
			return nil, err
		}
		catalog = c
		globals.Debug("loaded log catalog override from %s", cfg.LogCatalog)
	}

	reader := logsource.NewReader(globals.LogDir)
	correlator := correlate.New(reader, cfg.Defaults.MaxLines)
	ag := agent.New(catalog, reader, cfg.Defaults.MaxFiles, cfg.Defaults.MaxLinesPerFile)
	client := aiclient.New(time.Duration(cfg.AI.TimeoutSeconds) * time.Second)

	return &engine{
		reader:       reader,
		correlator:   correlator,
		agent:        ag,
		classifier:   anomaly.NewClassifier(registry),
		orchestrator: diagnose.New(reader, correlator, ag, client, nil),
	}, nil
}

// textRenderer builds the plain-text renderer, dropping decoration
// when stdout is not a terminal.
func textRenderer(globals *Globals) *output.TextRenderer {
	plain := true
	if f, ok := globals.Stdout.(interface{ Fd() uintptr }); ok {
		plain = !isatty.IsTerminal(f.Fd())
	}
	return output.NewTextRenderer(globals.Stdout, plain)
}
