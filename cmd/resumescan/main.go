package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀█ █▀▀ █▀ █ █ █▀▄▀█ █▀▀ █▀ █▀▀ ▄▀█ █▄ █"
	logoText2 = "█▀▄ ██▄ ▄█ █▄█ █ ▀ █ ██▄ ▄█ █▄▄ █▀█ █ ▀█"
)

// Version set via ldflags during build
var version = "dev"

// Persistent flags shared by every command. Values are read through
// config.Load so they take part in the precedence chain.
var rootFlags struct {
	backendURL     string
	dataDir        string
	logLevel       string
	logFile        string
	requestTimeout string
	noHistory      bool
}

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "resumescan",
	Short: "Match resumes against a job description from the terminal",
	Args:  cobra.NoArgs,
	RunE:  runWizard,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

resumescan uploads resumes to a resume matching service, collects a job
description, job role and required skills, and shows the resumes ranked by
similarity. Run without a subcommand to start the interactive wizard.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./resumescan.yml
Global config: ~/.config/resumescan/resumescan.yml`

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.backendURL, "backend-url", "", "Matching service origin (default: http://127.0.0.1:5000)")
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for scan history and UI state (default: .resumescan)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
	pf.StringVar(&rootFlags.logFile, "log-file", "", "Write logs to this file")
	pf.StringVar(&rootFlags.requestTimeout, "request-timeout", "", "Per-request timeout, e.g. 30s (default: none)")
	pf.BoolVar(&rootFlags.noHistory, "no-history", false, "Do not record scans")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(devserverCmd)
}
