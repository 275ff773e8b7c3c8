package domain

import (
	"errors"
	"fmt"
	"time"
)

// PreviewLimit caps the textual rendering of correlated logs handed to
// callers and prompts. The structured sequence is never truncated.
const PreviewLimit = 4000

// ErrMissingIssueTime is returned when a request omits the issue time.
var ErrMissingIssueTime = errors.New("missing issue_time (format: YYYY-MM-DD HH:MM:SS)")

// DiagnosticRequest describes one root-cause analysis call.
type DiagnosticRequest struct {
	IssueTime     time.Time
	Description   string
	WindowMinutes int
}

// Validate checks request invariants before any work is done. A
// malformed request is a caller error, never a downstream fault.
func (r DiagnosticRequest) Validate() error {
	if r.IssueTime.IsZero() {
		return ErrMissingIssueTime
	}
	if r.WindowMinutes < 0 {
		return fmt.Errorf("window_minutes must be >= 0, got %d", r.WindowMinutes)
	}
	return nil
}

// TokenUsage mirrors the completion service's usage accounting.
type TokenUsage struct {
	Total      int `json:"total_tokens"`
	Completion int `json:"completion_tokens"`
}

// DiagnosticResult is the structured outcome of an AI-assisted
// diagnosis. Exactly one of RawText (success) or Error (failure) is
// meaningfully populated.
type DiagnosticResult struct {
	RawText  string     `json:"raw,omitempty"`
	Model    string     `json:"model,omitempty"`
	Usage    TokenUsage `json:"usage"`
	Attempts int        `json:"attempt"`
	Error    string     `json:"error,omitempty"`
}

// Succeeded reports whether the diagnosis produced analysis text.
func (r DiagnosticResult) Succeeded() bool {
	return r.Error == "" && r.RawText != ""
}
