// Package aiclient calls an OpenAI-compatible chat completion API.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iksora/roblog/internal/domain"
)

// ErrNotConfigured indicates no API key is available. Distinct from a
// key rejected by the service, which surfaces as an APIError.
var ErrNotConfigured = errors.New("AI completion service not configured: missing api_key")

// APIError is a non-2xx response from the completion service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Request describes one completion call. Settings travel with the
// request; the client holds no credentials.
type Request struct {
	BaseURL     string
	APIKey      string
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the parsed completion.
type Response struct {
	Content string
	Model   string
	Usage   domain.TokenUsage
}

// Client is a thin wrapper over http.Client. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// New creates a client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
	}
}

// Complete performs one chat-completion call. It does not retry; the
// orchestrator owns the retry loop.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.APIKey == "" {
		return nil, ErrNotConfigured
	}
	model := req.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(req.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var apiResp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
		Usage struct {
			TotalTokens      int `json:"total_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from completion API")
	}

	content := apiResp.Choices[0].Message.Content
	if content == "" {
		content = apiResp.Choices[0].Text
	}
	respModel := apiResp.Model
	if respModel == "" {
		respModel = model
	}
	return &Response{
		Content: content,
		Model:   respModel,
		Usage: domain.TokenUsage{
			Total:      apiResp.Usage.TotalTokens,
			Completion: apiResp.Usage.CompletionTokens,
		},
	}, nil
}

// IsTransient classifies an error as retryable: connection failures,
// timeouts, rate limits and 5xx responses. Authentication and other
// client errors are not retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	if errors.Is(err, ErrNotConfigured) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
