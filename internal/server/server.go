// Package server exposes the diagnostic engine over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/anomaly"
	"github.com/iksora/roblog/internal/config"
	"github.com/iksora/roblog/internal/diagnose"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/report"
)

// settingsStore guards the mutable AI settings behind the settings
// endpoints. Handlers take a snapshot; in-flight diagnoses keep the
// settings they started with.
type settingsStore struct {
	mu sync.RWMutex
	ai config.AISettings
}

func (s *settingsStore) get() config.AISettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ai
}

func (s *settingsStore) update(fn func(*config.AISettings)) config.AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.ai)
	return s.ai
}

// StartOpts holds configuration for the HTTP server.
type StartOpts struct {
	Config       *config.Config
	Reader       *logsource.Reader
	Orchestrator *diagnose.Orchestrator
	Agent        *agent.Agent
	Classifier   *anomaly.Classifier
	Reports      *report.Store
	Port         int
	Out          io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Config == nil || opts.Reader == nil || opts.Orchestrator == nil {
		return fmt.Errorf("server: config, reader and orchestrator are required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	settings := &settingsStore{ai: opts.Config.AI}
	registerRoutes(router, opts, settings)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Diagnostic API listening at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
