package cli

import (
	"context"
	"errors"

	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/output"
	"github.com/iksora/roblog/internal/report"
	"github.com/iksora/roblog/internal/timeparse"
)

// DiagnoseCmd diagnoses an issue around a known time
type DiagnoseCmd struct {
	IssueTime   string `short:"t" required:"" help:"Issue time (YYYY-MM-DD HH:MM:SS)"`
	Description string `short:"m" help:"Free-text description of the problem"`
	Window      int    `short:"w" default:"${config_window}" help:"Minutes before and after the issue time to correlate"`
	Save        bool   `help:"Save the result as a report"`
}

// Run executes the diagnose command
func (c *DiagnoseCmd) Run(globals *Globals) error {
	issueTime, err := timeparse.ParseInstant(c.IssueTime)
	if err != nil {
		return outputError(globals, codeInvalidTime, err.Error())
	}

	eng, err := buildEngine(globals)
	if err != nil {
		return outputError(globals, codeRegistryLoad, err.Error())
	}

	globals.Debug("diagnosing %s with a ±%d minute window", c.IssueTime, c.Window)
	result, err := eng.orchestrator.Diagnose(context.Background(), domain.DiagnosticRequest{
		IssueTime:     issueTime,
		Description:   c.Description,
		WindowMinutes: c.Window,
	}, globals.Config.AI)
	if err != nil {
		var nf *logsource.DirectoryNotFoundError
		if errors.As(err, &nf) {
			return outputError(globals, codeDirNotFound, err.Error())
		}
		return outputError(globals, codeDiagnoseFailed, err.Error())
	}

	if c.Save {
		saveReport(globals, "diagnosis", result, result.AIAnalysis.RawText)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("diagnosis", result)
	}
	textRenderer(globals).Diagnosis(result)
	return nil
}

// saveReport persists a result, degrading to a warning when the
// reports directory is unusable.
func saveReport(globals *Globals, prefix string, result any, summary string) {
	store, err := report.NewStore(globals.Config.ReportsDir)
	if err != nil {
		emitWarning(globals, "could not open reports directory: "+err.Error())
		return
	}
	id, err := store.Save(prefix, result, summary)
	if err != nil {
		emitWarning(globals, "could not save report: "+err.Error())
		return
	}
	globals.Debug("saved report %s under %s", id, store.Dir())
}
