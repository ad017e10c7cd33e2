package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/resumescan/internal/config"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/nats"
	"github.com/mark3labs/resumescan/internal/scan"
	"github.com/mark3labs/resumescan/internal/tracing"
	"github.com/mark3labs/resumescan/internal/tui/theme"
	"github.com/mark3labs/resumescan/internal/viewer"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// sessionMode decides whether the backend session outlives the command.
type sessionMode int

const (
	// sessionEphemeral keeps cookies in memory only.
	sessionEphemeral sessionMode = iota
	// sessionKeep starts a new session and saves it under data_dir on Close.
	sessionKeep
	// sessionResume continues the session saved by an earlier command.
	sessionResume
)

// app holds everything a command needs to talk to the backend.
type app struct {
	cfg     *config.Config
	client  *matcher.Client
	viewer  *viewer.Viewer
	scanner *scan.Scanner

	// history is nil when disabled or when the store failed to start.
	history *history.Store
	nats    *nats.Embedded

	stopTracing tracing.ShutdownFunc

	// jar is set when the session is saved to or resumed from data_dir.
	jar  *matcher.SessionJar
	mode sessionMode

	// keepOpened leaves opened resumes on disk after Close, for viewers
	// that read the file after the opener returns.
	keepOpened bool
}

// loadConfig reads configuration and applies the logging settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	if !theme.Set(cfg.Theme) {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(theme.Names(), ", "))
	}
	return cfg, nil
}

// newApp loads config and builds the client, viewer, history and scanner.
// Callers must Close the returned app.
func newApp(ctx context.Context, cmd *cobra.Command, mode sessionMode) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var jar *matcher.SessionJar
	switch mode {
	case sessionKeep:
		jar, err = matcher.NewSessionJar(sessionPath(cfg), cfg.BackendURL)
	case sessionResume:
		jar, err = matcher.LoadSessionJar(sessionPath(cfg), cfg.BackendURL)
	}
	if err != nil {
		return nil, err
	}

	stopTracing, err := tracing.Setup(ctx, cfg.TraceFile, version)
	if err != nil {
		return nil, err
	}

	clientOpts := matcher.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
		Breaker: matcher.BreakerOptions{
			Enabled:     cfg.Breaker.Enabled,
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
	}
	if jar != nil {
		clientOpts.Jar = jar
	}
	client, err := matcher.NewClient(clientOpts)
	if err != nil {
		_ = stopTracing(ctx)
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		client:      client,
		viewer:      viewer.New(client, viewer.Options{Command: cfg.OpenCommand}),
		stopTracing: stopTracing,
		jar:         jar,
		mode:        mode,
	}

	opts := []scan.Option{scan.WithDropEmptySkills(cfg.DropEmptySkills)}
	if cfg.History {
		if err := a.openHistory(ctx); err != nil {
			// History is best effort.
			logger.Warn("scan history disabled: %v", err)
		} else {
			opts = append(opts, scan.WithJournal(a.history))
		}
	}
	a.scanner = scan.New(client, cfg.BackendURL, opts...)

	logger.Debug("backend %s, data dir %s, history %v", cfg.BackendURL, cfg.DataDir, a.history != nil)
	return a, nil
}

func (a *app) openHistory(ctx context.Context) error {
	embedded, err := nats.StartEmbedded(ctx, historyDir(a.cfg))
	if err != nil {
		return err
	}
	a.nats = embedded
	a.history = history.NewStore(embedded.JetStream, embedded.Stream)
	return nil
}

func historyDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "nats")
}

func sessionPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, matcher.SessionFile)
}

// hasSession reports whether a resumed app found a saved backend session.
func (a *app) hasSession() bool {
	return a.jar != nil && !a.jar.Empty()
}

// forgetSession drops the saved session so later commands start fresh.
func (a *app) forgetSession() {
	if a.jar == nil {
		return
	}
	if err := a.jar.Clear(); err != nil {
		logger.Warn("failed to forget backend session: %v", err)
	}
	a.jar = nil
}

// Close saves a kept session and releases temporary files, history storage
// and the tracer.
func (a *app) Close() {
	if a.mode == sessionKeep && a.jar != nil {
		if err := a.jar.Save(); err != nil {
			logger.Warn("failed to save backend session: %v", err)
		}
	}
	if !a.keepOpened {
		if err := a.viewer.Close(); err != nil {
			logger.Warn("failed to remove temporary resumes: %v", err)
		}
	}
	if err := a.nats.Close(); err != nil {
		logger.Warn("failed to stop history store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.stopTracing(ctx); err != nil {
		logger.Warn("failed to flush traces: %v", err)
	}
}

// openHistoryOnly starts the history store without a backend client. It is
// used by the history commands, which never talk to the backend.
func openHistoryOnly(ctx context.Context, cmd *cobra.Command) (*config.Config, *history.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	embedded, err := nats.StartEmbedded(ctx, historyDir(cfg))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open scan history: %w", err)
	}
	cleanup := func() {
		if err := embedded.Close(); err != nil {
			logger.Warn("failed to stop history store: %v", err)
		}
	}
	return cfg, history.NewStore(embedded.JetStream, embedded.Stream), cleanup, nil
}
