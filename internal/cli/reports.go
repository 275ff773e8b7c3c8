package cli

import (
	"fmt"

	"github.com/iksora/roblog/internal/output"
	"github.com/iksora/roblog/internal/report"
)

// ReportsCmd lists saved reports
type ReportsCmd struct{}

// Run executes the reports command
func (c *ReportsCmd) Run(globals *Globals) error {
	store, err := report.NewStore(globals.Config.ReportsDir)
	if err != nil {
		return outputError(globals, codeReportFailed, err.Error())
	}
	entries, err := store.List()
	if err != nil {
		return outputError(globals, codeReportFailed, err.Error())
	}

	if globals.Format == "ndjson" {
		writer := output.NewNDJSONWriter(globals.Stdout)
		for _, e := range entries {
			if err := writer.WriteResult("report", e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(globals.Stdout, "No reports in "+store.Dir())
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(globals.Stdout, "%-60s %6s %10d bytes\n", e.Name, e.Type, e.Size)
	}
	fmt.Fprintf(globals.Stdout, "\n%d report(s) in %s\n", len(entries), store.Dir())
	return nil
}
