package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/resumescan/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http      string
	outputDir string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve resume matching tools over MCP",
	Long: `Serve resume matching tools over the Model Context Protocol.

Tools:
  match-resumes  upload resumes and rank them against a job
  get-resume     download a resume into a directory
  list-scans     list recorded scans

By default the server speaks MCP on stdin/stdout. Use --http to serve the
streamable HTTP transport on a local address instead.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.http, "http", "", "Serve streamable HTTP on this address (e.g. 127.0.0.1:8765) instead of stdio")
	mcpCmd.Flags().StringVar(&mcpFlags.outputDir, "output-dir", "", "Directory for resumes fetched by get-resume (default: system temp dir)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, sessionEphemeral)
	if err != nil {
		return err
	}
	defer a.Close()
	defer guardSession(a)()

	outputDir := mcpFlags.outputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}

	opts := mcpserver.Options{
		Scanner:   a.scanner,
		Saver:     a.viewer,
		Origin:    a.cfg.BackendURL,
		OutputDir: outputDir,
		Version:   version,
	}
	if a.history != nil {
		opts.History = a.history
	}
	srv := mcpserver.New(opts)

	if mcpFlags.http == "" {
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}

	if _, err := srv.Start(ctx, mcpFlags.http); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", srv.URL())
	<-ctx.Done()
	return srv.Stop()
}
