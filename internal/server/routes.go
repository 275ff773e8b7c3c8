package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iksora/roblog/internal/config"
	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/timeparse"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts, settings *settingsStore) {
	router.GET("/api/status", handleStatus(opts, settings))
	router.GET("/api/logs", handleLogs(opts))
	router.GET("/api/settings", handleGetSettings(settings))
	router.POST("/api/settings", handleUpdateSettings(settings))
	router.POST("/api/diagnose", handleDiagnose(opts, settings))
	router.POST("/api/agent/diagnose", handleAgentDiagnose(opts, settings))
	router.GET("/api/agent/logs-info", handleLogsInfo(opts))
	router.GET("/api/agent/available-logs", handleAvailableLogs(opts))
	router.POST("/api/analyze", handleAnalyze(opts, settings))
	router.GET("/api/reports", handleReports(opts))
	router.GET("/api/report", handleReport(opts))
}

func handleStatus(opts StartOpts, settings *settingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "running",
			"log_directory": opts.Reader.Dir(),
			"ai_configured": settings.get().Configured(),
		})
	}
}

func handleLogs(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := opts.Reader.List()
		if err != nil {
			status := http.StatusInternalServerError
			var nf *logsource.DirectoryNotFoundError
			if errors.As(err, &nf) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"log_directory": opts.Reader.Dir(),
			"total":         len(files),
			"files":         files,
		})
	}
}

// settingsView is the redacted settings payload: the key itself never
// leaves the process.
type settingsView struct {
	config.AISettings
	APIKeySet bool `json:"api_key_set"`
}

func handleGetSettings(settings *settingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ai := settings.get()
		c.JSON(http.StatusOK, settingsView{AISettings: ai, APIKeySet: ai.Configured()})
	}
}

func handleUpdateSettings(settings *settingsStore) gin.HandlerFunc {
	type updateRequest struct {
		Provider    *string  `json:"api_provider"`
		APIKey      *string  `json:"api_key"`
		BaseURL     *string  `json:"base_url"`
		Model       *string  `json:"model"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload: " + err.Error()})
			return
		}
		ai := settings.update(func(s *config.AISettings) {
			if req.Provider != nil {
				s.Provider = *req.Provider
			}
			if req.APIKey != nil {
				s.APIKey = *req.APIKey
			}
			if req.BaseURL != nil {
				s.BaseURL = *req.BaseURL
			}
			if req.Model != nil {
				s.Model = *req.Model
			}
			if req.MaxTokens != nil {
				s.MaxTokens = *req.MaxTokens
			}
			if req.Temperature != nil {
				s.Temperature = *req.Temperature
			}
		})
		c.JSON(http.StatusOK, gin.H{
			"status":   "success",
			"settings": settingsView{AISettings: ai, APIKeySet: ai.Configured()},
		})
	}
}

func handleDiagnose(opts StartOpts, settings *settingsStore) gin.HandlerFunc {
	type diagnoseRequest struct {
		IssueTime     string `json:"issue_time"`
		Description   string `json:"description"`
		WindowMinutes int    `json:"window_minutes"`
	}
	return func(c *gin.Context) {
		var req diagnoseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request payload: " + err.Error()})
			return
		}
		if req.IssueTime == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": domain.ErrMissingIssueTime.Error()})
			return
		}
		issueTime, err := timeparse.ParseInstant(req.IssueTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		window := req.WindowMinutes
		if window <= 0 {
			window = opts.Config.Defaults.WindowMinutes
		}

		result, err := opts.Orchestrator.Diagnose(c.Request.Context(), domain.DiagnosticRequest{
			IssueTime:     issueTime,
			Description:   req.Description,
			WindowMinutes: window,
		}, settings.get())
		if err != nil {
			c.JSON(diagnoseErrorStatus(err), gin.H{"status": "error", "message": err.Error()})
			return
		}

		resp := gin.H{"status": "success", "result": result}
		if opts.Reports != nil && result.AIAnalysis.Succeeded() {
			if id, err := opts.Reports.Save("diagnosis", result, result.AIAnalysis.RawText); err == nil {
				resp["report_id"] = id
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleAgentDiagnose(opts StartOpts, settings *settingsStore) gin.HandlerFunc {
	type agentRequest struct {
		Problem       string `json:"problem"`
		IssueTime     string `json:"issue_time"`
		WindowMinutes int    `json:"window_minutes"`
	}
	return func(c *gin.Context) {
		var req agentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request payload: " + err.Error()})
			return
		}
		if strings.TrimSpace(req.Problem) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing problem description"})
			return
		}

		var issueTime *time.Time
		if req.IssueTime != "" {
			t, err := timeparse.ParseInstant(req.IssueTime)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
				return
			}
			issueTime = &t
		}
		window := req.WindowMinutes
		if window <= 0 {
			window = opts.Config.Defaults.AgentWindowMinutes
		}

		result, err := opts.Orchestrator.AgentDiagnose(c.Request.Context(), req.Problem, issueTime, window, settings.get())
		if err != nil {
			c.JSON(diagnoseErrorStatus(err), gin.H{"status": "error", "message": err.Error()})
			return
		}

		resp := gin.H{"status": "success", "result": result}
		if opts.Reports != nil && result.AIAnalysis.Succeeded() {
			if id, err := opts.Reports.Save("agent_diagnosis", result, result.AIAnalysis.RawText); err == nil {
				resp["report_id"] = id
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleLogsInfo(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Agent == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "agent not available"})
			return
		}
		catalog := opts.Agent.Catalog()
		c.JSON(http.StatusOK, gin.H{
			"total":     len(catalog.Entries),
			"log_types": catalog.Entries,
		})
	}
}

func handleAvailableLogs(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Agent == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "agent not available"})
			return
		}
		files, err := opts.Reader.List()
		if err != nil {
			status := http.StatusInternalServerError
			var nf *logsource.DirectoryNotFoundError
			if errors.As(err, &nf) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		catalog := opts.Agent.Catalog()
		cataloged := make([]diagnose.CatalogedFile, 0, len(files))
		for _, f := range files {
			entry := diagnose.CatalogedFile{FileInfo: f}
			if ce, ok := catalog.Lookup(f.Name); ok {
				entry.Category = ce.Category
				entry.Description = ce.Description
				entry.Keywords = ce.Keywords
			}
			cataloged = append(cataloged, entry)
		}
		c.JSON(http.StatusOK, gin.H{
			"log_directory": opts.Reader.Dir(),
			"total":         len(cataloged),
			"files":         cataloged,
		})
	}
}

func handleAnalyze(opts StartOpts, settings *settingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Classifier == nil || opts.Agent == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis not available"})
			return
		}
		analysis, err := diagnose.AnalyzeDirectory(c.Request.Context(), opts.Reader, opts.Classifier, opts.Agent.Catalog(), nil)
		if err != nil {
			status := http.StatusInternalServerError
			var nf *logsource.DirectoryNotFoundError
			if errors.As(err, &nf) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"status": "error", "message": err.Error()})
			return
		}

		resp := gin.H{"status": "success", "result": analysis}
		if opts.Reports != nil {
			if id, err := opts.Reports.Save("analysis", analysis, ""); err == nil {
				resp["report_id"] = id
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleReports(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Reports == nil {
			c.JSON(http.StatusOK, []struct{}{})
			return
		}
		entries, err := opts.Reports.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if entries == nil {
			c.JSON(http.StatusOK, []struct{}{})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func handleReport(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Reports == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "reports not available"})
			return
		}
		path := c.Query("path")
		if path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing path parameter"})
			return
		}
		data, err := opts.Reports.Read(path)
		if err != nil {
			status := http.StatusNotFound
			if strings.Contains(err.Error(), "outside reports directory") {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			c.Data(http.StatusOK, "application/json", data)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	}
}

// diagnoseErrorStatus maps orchestrator errors to HTTP statuses.
// Validation problems are the caller's fault; a missing directory is
// its own case; everything else is a server error.
func diagnoseErrorStatus(err error) int {
	var nf *logsource.DirectoryNotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingIssueTime):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
