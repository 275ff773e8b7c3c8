// Package diagnose orchestrates log extraction, prompt construction
// and the retrying call to the AI completion service.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/aiclient"
	"github.com/iksora/roblog/internal/config"
	"github.com/iksora/roblog/internal/correlate"
	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/timeparse"
)

// Retry policy. Transient failures are retried with exponential
// backoff; the wall-clock ceiling pre-empts further retries even
// mid-backoff.
const (
	MaxAttempts      = 3
	BaseBackoff      = 2 * time.Second
	WallClockCeiling = 120 * time.Second
)

// Completer is the external AI completion collaborator.
type Completer interface {
	Complete(ctx context.Context, req aiclient.Request) (*aiclient.Response, error)
}

// Orchestrator drives one diagnostic request end to end. Each request
// owns its own buffers and backoff timer; the orchestrator itself
// holds only read-only collaborators and is safe for concurrent use.
type Orchestrator struct {
	reader     *logsource.Reader
	correlator *correlate.Correlator
	agent      *agent.Agent
	client     Completer
	clk        clock.Clock
}

// New wires an orchestrator. A nil clk selects the wall clock; tests
// pass clock.NewMock().
func New(reader *logsource.Reader, correlator *correlate.Correlator, ag *agent.Agent, client Completer, clk clock.Clock) *Orchestrator {
	if clk == nil {
		clk = clock.New()
	}
	return &Orchestrator{reader: reader, correlator: correlator, agent: ag, client: client, clk: clk}
}

// Result is the outcome of a windowed diagnosis.
type Result struct {
	IssueTime     string                  `json:"issue_time"`
	WindowMinutes int                     `json:"window_minutes"`
	LogsFound     bool                    `json:"logs_found"`
	LogsPreview   string                  `json:"logs_preview"`
	DateFallback  bool                    `json:"date_fallback,omitempty"`
	AIAnalysis    domain.DiagnosticResult `json:"ai_analysis"`
}

// Diagnose extracts the window around the issue time, builds the
// prompt and calls the completion service with retries. Input
// validation errors return err; everything past validation lands in
// the Result (an AI failure populates AIAnalysis.Error, never panics
// or propagates).
func (o *Orchestrator) Diagnose(ctx context.Context, req domain.DiagnosticRequest, settings config.AISettings) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	window := domain.NewTimeWindow(req.IssueTime, req.WindowMinutes, req.WindowMinutes)
	correlated, err := o.correlator.Extract(ctx, window)
	if err != nil {
		return Result{}, err
	}

	preview := correlate.Preview(correlated)
	prompt := BuildPrompt(req.Description, req.IssueTime, preview)

	return Result{
		IssueTime:     req.IssueTime.Format(domain.TimeLayout),
		WindowMinutes: req.WindowMinutes,
		LogsFound:     correlated.Found(),
		LogsPreview:   preview,
		DateFallback:  correlated.DateFallback,
		AIAnalysis:    o.callWithRetry(ctx, prompt, settings),
	}, nil
}

// AgentResult is the outcome of an agent-driven diagnosis.
type AgentResult struct {
	Problem      string                  `json:"problem"`
	IssueTime    string                  `json:"issue_time,omitempty"`
	Reasoning    []agent.Decision        `json:"reasoning"`
	SelectedLogs []domain.FileRelevance  `json:"selected_logs"`
	LogContents  map[string]string       `json:"log_contents,omitempty"`
	AIAnalysis   domain.DiagnosticResult `json:"ai_analysis"`
}

// AgentDiagnose lets the relevance agent pick the files for a
// free-text problem description, then diagnoses on their excerpts.
// issueTime may be nil.
func (o *Orchestrator) AgentDiagnose(ctx context.Context, description string, issueTime *time.Time, windowMinutes int, settings config.AISettings) (AgentResult, error) {
	if description == "" {
		return AgentResult{}, errors.New("missing description")
	}

	var window *domain.TimeWindow
	if issueTime != nil {
		w := domain.NewTimeWindow(*issueTime, windowMinutes, windowMinutes)
		window = &w
	}

	selection, err := o.agent.Select(ctx, description, window)
	if err != nil {
		return AgentResult{}, err
	}

	contents := make(map[string]string, len(selection.Files))
	for _, f := range selection.Files {
		contents[f.File] = o.readExcerpt(f.File, window)
	}

	result := AgentResult{
		Problem:      description,
		Reasoning:    selection.Trace,
		SelectedLogs: selection.Files,
		LogContents:  contents,
	}
	if issueTime != nil {
		result.IssueTime = issueTime.Format(domain.TimeLayout)
	}

	prompt := BuildAgentPrompt(description, selection.Files, contents)
	result.AIAnalysis = o.callWithRetry(ctx, prompt, settings)
	return result, nil
}

// callWithRetry runs the retry loop. Attempt count is always reported
// for observability. Backoff sleeps run on the injected clock and are
// abandoned when the caller's context ends, so a gone caller never
// leaks a retry loop.
func (o *Orchestrator) callWithRetry(ctx context.Context, prompt string, settings config.AISettings) domain.DiagnosticResult {
	if !settings.Configured() {
		return domain.DiagnosticResult{Error: aiclient.ErrNotConfigured.Error()}
	}

	deadline := o.clk.Now().Add(WallClockCeiling)
	req := aiclient.Request{
		BaseURL:     settings.BaseURL,
		APIKey:      settings.APIKey,
		Model:       settings.Model,
		Prompt:      prompt,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		resp, err := o.client.Complete(ctx, req)
		if err == nil {
			return domain.DiagnosticResult{
				RawText:  resp.Content,
				Model:    resp.Model,
				Usage:    resp.Usage,
				Attempts: attempt,
			}
		}
		lastErr = err

		if !aiclient.IsTransient(err) || ctx.Err() != nil {
			return domain.DiagnosticResult{Attempts: attempt, Error: err.Error()}
		}
		if attempt == MaxAttempts {
			break
		}

		backoff := BaseBackoff << (attempt - 1) // 2s, 4s, 8s
		if o.clk.Now().Add(backoff).After(deadline) {
			return domain.DiagnosticResult{Attempts: attempt, Error: "retry budget exhausted: " + lastErr.Error()}
		}
		timer := o.clk.Timer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.DiagnosticResult{Attempts: attempt, Error: ctx.Err().Error()}
		case <-timer.C:
		}
	}

	return domain.DiagnosticResult{Attempts: MaxAttempts, Error: lastErr.Error()}
}

// readExcerpt reads up to the agent's per-file line budget, keeping
// head and tail halves when a file overflows it. When a window is
// given, only lines timestamped inside it are kept.
func (o *Orchestrator) readExcerpt(name string, window *domain.TimeWindow) string {
	it, err := o.reader.Open(name)
	if err != nil {
		return "[log file not readable: " + name + "]"
	}
	defer it.Close()

	maxLines := o.agent.MaxLinesPerFile()
	var lines []string
	total := 0
	for {
		raw, _, ok := it.Next()
		if !ok {
			break
		}
		if window != nil {
			ts, found := timeparse.Extract(raw)
			if !found || !window.Contains(ts) {
				continue
			}
		}
		total++
		lines = append(lines, raw)
	}

	if total > maxLines {
		half := maxLines / 2
		head := lines[:half]
		tail := lines[len(lines)-half:]
		out := make([]string, 0, 2*half+1)
		out = append(out, head...)
		out = append(out, fmt.Sprintf("... [%d lines omitted] ...", total-len(head)-len(tail)))
		out = append(out, tail...)
		lines = out
	}
	return strings.Join(lines, "\n")
}
