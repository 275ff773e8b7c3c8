package diagnose

import (
	"strings"
	"time"

	"github.com/iksora/roblog/internal/domain"
)

const promptInstructions = `You are an expert in robot system log analysis.
Read the log excerpt, analyze the likely root cause, point out the key log lines, and give actionable troubleshooting and repair steps.
Structure the answer with these sections: Summary, Root-Cause Hypothesis, Key Log Lines, Suggested Actions.`

// promptExcerptLimit bounds the per-file excerpt in an agent prompt so
// a handful of files stays inside the model's context.
const promptExcerptLimit = 8000

// BuildPrompt renders the diagnostic prompt for a windowed extraction.
// The log excerpt is already preview-bounded by the correlator.
func BuildPrompt(description string, issueTime time.Time, logs string) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	b.WriteString("\n\nIssue time: ")
	b.WriteString(issueTime.Format(domain.TimeLayout))
	if description != "" {
		b.WriteString("\nReported problem: ")
		b.WriteString(description)
	}
	b.WriteString("\n\nRelevant logs begin:\n")
	if logs == "" {
		b.WriteString("(no matching logs found)")
	} else {
		b.WriteString(logs)
	}
	b.WriteString("\n\nBegin the analysis:")
	return b.String()
}

// BuildAgentPrompt renders the prompt for an agent-selected file set,
// one fenced section per file.
func BuildAgentPrompt(description string, files []domain.FileRelevance, contents map[string]string) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	b.WriteString("\n\nReported problem: ")
	b.WriteString(description)
	b.WriteString("\n\nThe files below were selected as most relevant:\n")
	for _, f := range files {
		b.WriteString("\n### ")
		b.WriteString(f.File)
		b.WriteString(" (")
		b.WriteString(f.Reason)
		b.WriteString(")\n```\n")
		content := contents[f.File]
		if len(content) > promptExcerptLimit {
			content = content[:promptExcerptLimit]
		}
		b.WriteString(content)
		b.WriteString("\n```\n")
	}
	b.WriteString("\nPay attention to ERROR and WARN lines and to time correlation across files.\n\nBegin the analysis:")
	return b.String()
}
