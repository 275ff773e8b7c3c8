package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/aiclient"
	"github.com/iksora/roblog/internal/anomaly"
	"github.com/iksora/roblog/internal/config"
	"github.com/iksora/roblog/internal/correlate"
	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/report"
)

type fakeCompleter struct{}

func (fakeCompleter) Complete(ctx context.Context, req aiclient.Request) (*aiclient.Response, error) {
	return &aiclient.Response{
		Content: "Summary: diagnosed.",
		Model:   req.Model,
		Usage:   domain.TokenUsage{Total: 10, Completion: 6},
	}, nil
}

func newTestRouter(t *testing.T, logDir string) (*gin.Engine, StartOpts) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.LogDir = logDir
	cfg.AI.APIKey = "test-key"

	reader := logsource.NewReader(logDir)
	ag := agent.New(nil, reader, 0, 0)
	orch := diagnose.New(reader, correlate.New(reader, 0), ag, fakeCompleter{}, nil)

	store, err := report.NewStore(filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)

	opts := StartOpts{
		Config:       cfg,
		Reader:       reader,
		Orchestrator: orch,
		Agent:        ag,
		Classifier:   anomaly.NewClassifier(nil),
		Reports:      store,
	}

	router := gin.New()
	registerRoutes(router, opts, &settingsStore{ai: cfg.AI})
	return router, opts
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func writeLog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStatusEndpoint(t *testing.T) {
	dir := t.TempDir()
	router, _ := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, "running", out["status"])
	assert.Equal(t, dir, out["log_directory"])
	assert.Equal(t, true, out["ai_configured"])
}

func TestLogsEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ikitbot_driver.log", "2024-01-15 01:00:00 ok\n")
	router, _ := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, float64(1), out["total"])
}

func TestLogsEndpoint_MissingDirectory(t *testing.T) {
	router, _ := newTestRouter(t, "/nonexistent/robot/logs")

	w := doJSON(t, router, http.MethodGet, "/api/logs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t, t.TempDir())

	w := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["api_key_set"])
	assert.NotContains(t, w.Body.String(), "test-key", "the key never leaves the process")

	w = doJSON(t, router, http.MethodPost, "/api/settings", map[string]any{
		"model":       "gpt-4",
		"temperature": 0.1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	out = decode(t, w)
	assert.Equal(t, "gpt-4", out["model"])
	assert.Equal(t, 0.1, out["temperature"])
}

func TestDiagnoseEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ikitbot_driver.log", "2024-01-15 01:01:20 ERROR motor driver fault\n")
	router, opts := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodPost, "/api/diagnose", map[string]any{
		"issue_time":  "2024-01-15 01:01:31",
		"description": "robot stopped",
	})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, "success", out["status"])
	result, ok := out["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["logs_found"])

	// Successful diagnoses are persisted.
	assert.NotEmpty(t, out["report_id"])
	entries, err := opts.Reports.List()
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestDiagnoseEndpoint_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, t.TempDir())

	w := doJSON(t, router, http.MethodPost, "/api/diagnose", map[string]any{"description": "no time"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/diagnose", map[string]any{"issue_time": "yesterday-ish"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentDiagnoseEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ikitbot_driver.log", "2024-01-15 01:00:58 motor stall current\n")
	router, _ := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodPost, "/api/agent/diagnose", map[string]any{
		"problem":    "the motor stalled",
		"issue_time": "2024-01-15 01:01:00",
	})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	result, ok := out["result"].(map[string]any)
	require.True(t, ok)
	selected, ok := result["selected_logs"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, selected)
	assert.NotEmpty(t, result["reasoning"])
}

func TestAgentDiagnoseEndpoint_MissingProblem(t *testing.T) {
	router, _ := newTestRouter(t, t.TempDir())
	w := doJSON(t, router, http.MethodPost, "/api/agent/diagnose", map[string]any{"problem": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogsInfoEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, t.TempDir())

	w := doJSON(t, router, http.MethodGet, "/api/agent/logs-info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Greater(t, out["total"], float64(0))
}

func TestAvailableLogsEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "mqtt.txt", "x\n")
	writeLog(t, dir, "unknown.bin", "x\n")
	router, _ := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodGet, "/api/agent/available-logs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	files, ok := out["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 2)

	first := files[0].(map[string]any)
	assert.Equal(t, "mqtt.txt", first["name"])
	assert.Equal(t, "comms", first["category"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ikitbot_driver.log", "2024-01-15 01:00:00 motor fault detected\n2024-01-15 01:00:05 heartbeat ok\n")
	router, _ := newTestRouter(t, dir)

	w := doJSON(t, router, http.MethodPost, "/api/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	result, ok := out["result"].(map[string]any)
	require.True(t, ok)
	health, ok := result["health_assessment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(70), health["health_score"])
}

func TestReportEndpoints(t *testing.T) {
	router, opts := newTestRouter(t, t.TempDir())

	id, err := opts.Reports.Save("diagnosis", map[string]int{"x": 1}, "summary text")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []report.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, id, entries[0].ID)

	var jsonPath string
	for _, e := range entries {
		if e.Type == "json" {
			jsonPath = e.Path
		}
	}
	w = doJSON(t, router, http.MethodGet, "/api/report?path="+jsonPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = doJSON(t, router, http.MethodGet, "/api/report?path=/etc/passwd", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/report", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
