package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/output"
	"github.com/iksora/roblog/internal/timeparse"
)

// AgentCmd lets the log agent pick relevant files for a problem
type AgentCmd struct {
	Description []string `arg:"" help:"Free-text description of the problem"`
	IssueTime   string   `short:"t" help:"Optional issue time (YYYY-MM-DD HH:MM:SS)"`
	Window      int      `short:"w" default:"${config_agent_window}" help:"Minutes before and after the issue time to inspect"`
	Save        bool     `help:"Save the result as a report"`
}

// Run executes the agent command
func (c *AgentCmd) Run(globals *Globals) error {
	description := strings.TrimSpace(strings.Join(c.Description, " "))
	if description == "" {
		return outputError(globals, codeInvalidArgument, "missing problem description")
	}

	var issueTime *time.Time
	if c.IssueTime != "" {
		t, err := timeparse.ParseInstant(c.IssueTime)
		if err != nil {
			return outputError(globals, codeInvalidTime, err.Error())
		}
		issueTime = &t
	}

	eng, err := buildEngine(globals)
	if err != nil {
		return outputError(globals, codeRegistryLoad, err.Error())
	}

	globals.Debug("agent diagnosing %q", description)
	result, err := eng.orchestrator.AgentDiagnose(context.Background(), description, issueTime, c.Window, globals.Config.AI)
	if err != nil {
		var nf *logsource.DirectoryNotFoundError
		if errors.As(err, &nf) {
			return outputError(globals, codeDirNotFound, err.Error())
		}
		return outputError(globals, codeDiagnoseFailed, err.Error())
	}

	if c.Save {
		saveReport(globals, "agent_diagnosis", result, result.AIAnalysis.RawText)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("agent_diagnosis", result)
	}
	textRenderer(globals).Agent(result)
	return nil
}
