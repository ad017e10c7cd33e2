package main

import (
	"context"
	"os"

	"github.com/mark3labs/resumescan/internal/session"
	"github.com/mark3labs/resumescan/internal/state"
	"github.com/mark3labs/resumescan/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive resume matching wizard",
	Long: `Run the interactive resume matching wizard.

The wizard walks through four steps: upload resumes, describe the job,
list the required skills, and browse the ranked results. Selecting a result
downloads the resume and opens it with the configured open_command.

The backend session is released when the wizard exits or the process is
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cmd, sessionEphemeral)
	if err != nil {
		return err
	}
	defer a.Close()

	// Release the backend session on exit or on a termination signal.
	defer guardSession(a, session.OnSignal(func(os.Signal) { cancel() }))()

	err = wizard.Run(wizard.Options{
		Context:         ctx,
		Backend:         a.client,
		Opener:          a.viewer,
		Recorder:        a.scanner,
		DropEmptySkills: a.cfg.DropEmptySkills,
		UIState:         state.Load(a.cfg.DataDir),
		DataDir:         a.cfg.DataDir,
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
