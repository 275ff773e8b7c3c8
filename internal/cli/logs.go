package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/output"
)

// LogsCmd lists log files in the log directory
type LogsCmd struct{}

// Run executes the logs command
func (c *LogsCmd) Run(globals *Globals) error {
	eng, err := buildEngine(globals)
	if err != nil {
		return outputError(globals, codeRegistryLoad, err.Error())
	}

	files, err := eng.reader.List()
	if err != nil {
		var nf *logsource.DirectoryNotFoundError
		if errors.As(err, &nf) {
			return outputError(globals, codeDirNotFound, err.Error())
		}
		return outputError(globals, codeAnalyzeFailed, err.Error())
	}

	if globals.Format == "ndjson" {
		writer := output.NewNDJSONWriter(globals.Stdout)
		for _, f := range files {
			if err := writer.WriteResult("log_file", f); err != nil {
				return err
			}
		}
		return nil
	}

	if len(files) == 0 {
		fmt.Fprintln(globals.Stdout, "No log files found in "+eng.reader.Dir())
		return nil
	}

	fmt.Fprintf(globals.Stdout, "%-35s %12s  %-20s %s\n", "NAME", "SIZE", "MODIFIED", "CATEGORY")
	fmt.Fprintln(globals.Stdout, strings.Repeat("-", 90))
	for _, f := range files {
		category := "-"
		if entry, ok := eng.agent.Catalog().Lookup(f.Name); ok {
			category = entry.Category
		}
		fmt.Fprintf(globals.Stdout, "%-35s %12d  %-20s %s\n",
			f.Name, f.Size, f.Modified.Format("2006-01-02 15:04:05"), category)
	}
	fmt.Fprintf(globals.Stdout, "\n%d file(s) in %s\n", len(files), eng.reader.Dir())
	return nil
}

// CatalogCmd shows the log-type knowledge base
type CatalogCmd struct{}

// Run executes the catalog command
func (c *CatalogCmd) Run(globals *Globals) error {
	catalog := agent.DefaultCatalog()
	if globals.Config.LogCatalog != "" {
		loaded, err := agent.LoadCatalogFile(globals.Config.LogCatalog)
		if err != nil {
			return outputError(globals, codeRegistryLoad, err.Error())
		}
		catalog = loaded
	}

	if globals.Format == "ndjson" {
		writer := output.NewNDJSONWriter(globals.Stdout)
		for _, e := range catalog.Entries {
			if err := writer.WriteResult("log_type", e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range catalog.Entries {
		fmt.Fprintf(globals.Stdout, "%s [%s, %s importance]\n", e.Pattern, e.Category, e.Importance)
		fmt.Fprintf(globals.Stdout, "  %s\n", e.Description)
		if len(e.Keywords) > 0 {
			fmt.Fprintf(globals.Stdout, "  keywords: %s\n", strings.Join(e.Keywords, ", "))
		}
	}
	fmt.Fprintf(globals.Stdout, "\n%d known log type(s)\n", len(catalog.Entries))
	return nil
}
