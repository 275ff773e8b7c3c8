package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/domain"
)

// TextRenderer writes human-readable summaries. When plain is set
// (stdout is not a terminal) the section underlines are dropped.
type TextRenderer struct {
	w     io.Writer
	plain bool
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(w io.Writer, plain bool) *TextRenderer {
	return &TextRenderer{w: w, plain: plain}
}

func (r *TextRenderer) header(title string) {
	fmt.Fprintln(r.w, title)
	if !r.plain {
		fmt.Fprintln(r.w, strings.Repeat("=", len(title)))
	}
}

// Diagnosis renders a windowed diagnosis result.
func (r *TextRenderer) Diagnosis(res diagnose.Result) {
	r.header("Diagnosis for " + res.IssueTime)
	fmt.Fprintf(r.w, "Window: ±%d minutes\n", res.WindowMinutes)
	if !res.LogsFound {
		fmt.Fprintln(r.w, "No logs found in the window.")
	} else if res.DateFallback {
		fmt.Fprintln(r.w, "No timestamped lines in the window; matched by date instead.")
	}
	r.analysis(res.AIAnalysis)
}

// Agent renders an agent-driven diagnosis result.
func (r *TextRenderer) Agent(res diagnose.AgentResult) {
	r.header("Agent diagnosis")
	fmt.Fprintf(r.w, "Problem: %s\n\n", res.Problem)
	fmt.Fprintln(r.w, "Selected logs:")
	for _, f := range res.SelectedLogs {
		fmt.Fprintf(r.w, "  %d. %s - %s\n", f.Rank, f.File, f.Reason)
	}
	if len(res.Reasoning) > 0 {
		fmt.Fprintln(r.w, "\nReasoning trace:")
		for _, d := range res.Reasoning {
			if d.File != "" {
				fmt.Fprintf(r.w, "  [%s] %s: %s (+%.1f)\n", d.Criterion, d.File, d.Detail, d.Contribution)
			} else {
				fmt.Fprintf(r.w, "  [%s] %s\n", d.Criterion, d.Detail)
			}
		}
	}
	r.analysis(res.AIAnalysis)
}

// Directory renders a bulk directory analysis.
func (r *TextRenderer) Directory(res diagnose.DirectoryAnalysis) {
	r.header("Analysis of " + res.LogDir)
	fmt.Fprintf(r.w, "Files: %d  Anomalies: %d\n", res.TotalFiles, res.AnomalySummary.Total)
	fmt.Fprintf(r.w, "Health: %d/100 (%s)\n", res.Health.Score, res.Health.Status)
	fmt.Fprintf(r.w, "Breakdown: critical=%d high=%d medium=%d low=%d\n",
		res.Health.Breakdown[domain.SeverityCritical],
		res.Health.Breakdown[domain.SeverityHigh],
		res.Health.Breakdown[domain.SeverityMedium],
		res.Health.Breakdown[domain.SeverityLow])
	if len(res.Health.KeyIssues) > 0 {
		fmt.Fprintln(r.w, "\nKey issues:")
		for _, a := range res.Health.KeyIssues {
			ts := ""
			if !a.Timestamp.IsZero() {
				ts = a.Timestamp.Format(domain.TimeLayout) + " "
			}
			fmt.Fprintf(r.w, "  [%s] %s%s (%s): %s\n", a.Severity, ts, a.Type, a.SourceFile, a.Message)
		}
	}
	if len(res.Health.Recommendations) > 0 {
		fmt.Fprintln(r.w, "\nRecommendations:")
		for _, rec := range res.Health.Recommendations {
			fmt.Fprintf(r.w, "  - %s\n", rec)
		}
	}
}

func (r *TextRenderer) analysis(a domain.DiagnosticResult) {
	fmt.Fprintln(r.w)
	if a.Succeeded() {
		fmt.Fprintf(r.w, "AI analysis (model %s, attempt %d):\n%s\n", a.Model, a.Attempts, a.RawText)
		return
	}
	fmt.Fprintf(r.w, "AI analysis unavailable: %s\n", a.Error)
}
