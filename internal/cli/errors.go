package cli

import (
	"errors"
	"fmt"

	"github.com/iksora/roblog/internal/output"
)

// Stable machine-readable error codes for NDJSON consumers.
const (
	codeDirNotFound     = "DIR_NOT_FOUND"
	codeInvalidTime     = "INVALID_TIME"
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeRegistryLoad    = "REGISTRY_LOAD_FAILED"
	codeDiagnoseFailed  = "DIAGNOSE_FAILED"
	codeAnalyzeFailed   = "ANALYZE_FAILED"
	codeReportFailed    = "REPORT_FAILED"
	codeServerFailed    = "SERVER_FAILED"
)

// outputError normalizes error emission across commands, respecting
// ndjson vs text formats so machine consumers always get structured
// failures.
func outputError(globals *Globals, code, message string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
	}
	return errors.New(message)
}

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteWarning(msg)
		return
	}
	fmt.Fprintf(globals.Stderr, "Warning: %s\n", msg)
}
