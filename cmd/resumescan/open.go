package main

import (
	"fmt"

	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/session"
	"github.com/spf13/cobra"
)

// guardSession registers a cleanup hook for the app's backend session and
// returns the teardown to defer. Teardown waits at most cleanup_grace.
func guardSession(a *app, opts ...session.Option) func() {
	hook := session.NewHook(a.client, opts...)
	hook.Register()
	return func() {
		hook.Close()
		if !hook.Wait(a.cfg.CleanupGrace) {
			logger.Warn("backend cleanup did not finish within %s", a.cfg.CleanupGrace)
		}
	}
}

var openFlags struct {
	saveDir string
}

var openCmd = &cobra.Command{
	Use:   "open NAME",
	Short: "Download a resume and open it",
	Long: `Download a resume from the matching service and open it.

The resume is written to a temporary file and handed to open_command
(default: xdg-open on Linux, open on macOS); the file path is printed.
With --save the file is written to the given directory and not opened.

Resumes belong to the backend session that uploaded them. open continues
the session saved by "resumescan scan --keep-session".`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVarP(&openFlags.saveDir, "save", "o", "", "Save the resume into this directory instead of opening it")
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, sessionResume)
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	if !a.hasSession() {
		logger.Warn("no saved backend session, requesting %s without one", name)
	}
	if openFlags.saveDir != "" {
		path, err := a.viewer.Save(ctx, name, openFlags.saveDir)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", name, openHint(a, err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	a.keepOpened = true
	path, err := a.viewer.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, openHint(a, err))
	}
	logger.Info("opened %s at %s", name, path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// openHint explains a failed fetch when there was no session to send.
func openHint(a *app, err error) error {
	if a.hasSession() {
		return err
	}
	return fmt.Errorf("%w (no saved session; run resumescan scan --keep-session first)", err)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Release the session saved by scan --keep-session",
	Long: `Ask the matching service to release the backend session saved by
"resumescan scan --keep-session" and forget it locally.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, sessionResume)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.hasSession() {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved session")
			return nil
		}
		if err := a.client.Cleanup(ctx); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		a.forgetSession()
		fmt.Fprintln(cmd.OutOrStdout(), "Session released")
		return nil
	},
}
