package cli

import (
	"context"
	"errors"

	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/output"
)

// AnalyzeCmd scans the whole log directory for anomalies and health
type AnalyzeCmd struct {
	Save bool `help:"Save the result as a report"`
}

// Run executes the analyze command
func (c *AnalyzeCmd) Run(globals *Globals) error {
	eng, err := buildEngine(globals)
	if err != nil {
		return outputError(globals, codeRegistryLoad, err.Error())
	}

	analysis, err := diagnose.AnalyzeDirectory(context.Background(), eng.reader, eng.classifier, eng.agent.Catalog(), nil)
	if err != nil {
		var nf *logsource.DirectoryNotFoundError
		if errors.As(err, &nf) {
			return outputError(globals, codeDirNotFound, err.Error())
		}
		return outputError(globals, codeAnalyzeFailed, err.Error())
	}

	if c.Save {
		saveReport(globals, "analysis", analysis, "")
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("analysis", analysis)
	}
	textRenderer(globals).Directory(analysis)
	return nil
}
