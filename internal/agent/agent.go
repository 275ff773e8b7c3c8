package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/timeparse"
)

// Selection limits.
const (
	DefaultMaxFiles        = 5
	DefaultMaxLinesPerFile = 500
)

// Scoring policy. Keyword hits dominate, problem-vocabulary hits count
// a little less, the catalog prior and window activity round it out.
const (
	keywordWeight  = 2.0
	problemWeight  = 1.5
	activityWeight = 2.0
)

// Decision is one step of the agent's reasoning trace. The trace is
// part of the contract: callers surface it for explainability, so it
// is structured data, not prose.
type Decision struct {
	Criterion    string  `json:"criterion"` // keyword_match, problem_match, window_activity, prior, selection
	File         string  `json:"file,omitempty"`
	Detail       string  `json:"detail"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Selection is the agent's ranked choice of log files.
type Selection struct {
	Files []domain.FileRelevance `json:"selected_logs"`
	Trace []Decision             `json:"reasoning"`
}

// Agent ranks candidate log files against a problem description using
// the knowledge catalog. Deterministic: identical description, catalog
// and directory contents always produce the same selection and trace.
type Agent struct {
	catalog         *Catalog
	reader          *logsource.Reader
	maxFiles        int
	maxLinesPerFile int
}

// New creates an agent. A nil catalog selects the embedded default;
// non-positive caps select the package defaults.
func New(catalog *Catalog, reader *logsource.Reader, maxFiles, maxLinesPerFile int) *Agent {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if maxLinesPerFile <= 0 {
		maxLinesPerFile = DefaultMaxLinesPerFile
	}
	return &Agent{catalog: catalog, reader: reader, maxFiles: maxFiles, maxLinesPerFile: maxLinesPerFile}
}

// Catalog exposes the knowledge base (read-only).
func (a *Agent) Catalog() *Catalog {
	return a.catalog
}

// MaxLinesPerFile returns the per-file line budget for downstream
// content extraction.
func (a *Agent) MaxLinesPerFile() int {
	return a.maxLinesPerFile
}

// candidate is one scored file during ranking.
type candidate struct {
	file  logsource.FileInfo
	entry CatalogEntry
	known bool
	score float64
	why   []string
}

// Select ranks the directory's files for the description and returns
// the top picks with a per-file reason and the full decision trace.
// window may be nil when the caller has no issue time.
func (a *Agent) Select(ctx context.Context, description string, window *domain.TimeWindow) (Selection, error) {
	files, err := a.reader.List()
	if err != nil {
		return Selection{}, err
	}

	desc := strings.ToLower(description)
	var trace []Decision
	cands := make([]candidate, 0, len(files))

	for _, f := range files {
		entry, known := a.catalog.Lookup(f.Name)
		c := candidate{file: f, entry: entry, known: known}

		if known {
			if hits := overlap(desc, entry.Keywords); len(hits) > 0 {
				contribution := float64(len(hits)) * keywordWeight
				c.score += contribution
				c.why = append(c.why, "keywords "+strings.Join(hits, ", "))
				trace = append(trace, Decision{
					Criterion:    "keyword_match",
					File:         f.Name,
					Detail:       fmt.Sprintf("description mentions %s", strings.Join(hits, ", ")),
					Weight:       keywordWeight,
					Contribution: contribution,
				})
			}
			if hits := overlap(desc, entry.Problems); len(hits) > 0 {
				contribution := float64(len(hits)) * problemWeight
				c.score += contribution
				c.why = append(c.why, "known problem class "+strings.Join(hits, ", "))
				trace = append(trace, Decision{
					Criterion:    "problem_match",
					File:         f.Name,
					Detail:       fmt.Sprintf("description matches problem vocabulary %s", strings.Join(hits, ", ")),
					Weight:       problemWeight,
					Contribution: contribution,
				})
			}
			if c.score > 0 {
				// The prior only separates files that already matched;
				// a high-importance file with no match stays unselected.
				c.score += entry.Prior()
				trace = append(trace, Decision{
					Criterion:    "prior",
					File:         f.Name,
					Detail:       fmt.Sprintf("catalog importance %q", entry.Importance),
					Weight:       entry.Prior(),
					Contribution: entry.Prior(),
				})
			}
		}

		if window != nil && c.score > 0 {
			active, err := a.hasActivity(ctx, f.Name, *window)
			if err != nil {
				return Selection{}, err
			}
			if active {
				c.score += activityWeight
				c.why = append(c.why, "activity inside the issue window")
				trace = append(trace, Decision{
					Criterion:    "window_activity",
					File:         f.Name,
					Detail:       "file has timestamped lines inside the issue window",
					Weight:       activityWeight,
					Contribution: activityWeight,
				})
			}
		}

		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].file.Name < cands[j].file.Name
	})

	var selected []domain.FileRelevance
	for _, c := range cands {
		if c.score <= 0 || len(selected) >= a.maxFiles {
			break
		}
		selected = append(selected, domain.FileRelevance{
			File:   c.file.Name,
			Reason: reason(c),
			Rank:   len(selected) + 1,
			Score:  c.score,
		})
	}

	// No keyword hit anywhere: fall back to the high-importance files
	// so the diagnosis still has something to look at.
	if len(selected) == 0 {
		for _, c := range cands {
			if !c.known || c.entry.Importance != "high" || len(selected) >= a.maxFiles {
				continue
			}
			selected = append(selected, domain.FileRelevance{
				File:   c.file.Name,
				Reason: fmt.Sprintf("no keyword match anywhere; included as a high-importance %s log", c.entry.Category),
				Rank:   len(selected) + 1,
				Score:  c.entry.Prior(),
			})
		}
		sort.SliceStable(selected, func(i, j int) bool { return selected[i].File < selected[j].File })
		for i := range selected {
			selected[i].Rank = i + 1
		}
		trace = append(trace, Decision{
			Criterion: "selection",
			Detail:    "description matched no catalog vocabulary; defaulted to high-importance logs",
		})
	} else {
		trace = append(trace, Decision{
			Criterion: "selection",
			Detail:    fmt.Sprintf("selected %d of %d candidate files (cap %d)", len(selected), len(files), a.maxFiles),
		})
	}

	return Selection{Files: selected, Trace: trace}, nil
}

// hasActivity reports whether the file has at least one timestamped
// line inside the window, stopping at the first hit.
func (a *Agent) hasActivity(ctx context.Context, name string, window domain.TimeWindow) (bool, error) {
	it, err := a.reader.Open(name)
	if err != nil {
		return false, nil
	}
	defer it.Close()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}
		raw, _, ok := it.Next()
		if !ok {
			return false, it.Err()
		}
		if ts, found := timeparse.Extract(raw); found && window.Contains(ts) {
			return true, nil
		}
	}
}

// overlap returns the terms present in the lowercased description, in
// catalog order for determinism.
func overlap(desc string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		if term != "" && strings.Contains(desc, strings.ToLower(term)) {
			hits = append(hits, term)
		}
	}
	return hits
}

// reason renders the one-line human-readable justification.
func reason(c candidate) string {
	base := c.entry.Description
	if base == "" {
		base = "uncataloged log file"
	}
	if len(c.why) == 0 {
		return base
	}
	return fmt.Sprintf("%s; matched on %s", base, strings.Join(c.why, "; "))
}
