package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/scan"
	"github.com/spf13/cobra"
)

var scanFlags struct {
	role            string
	description     string
	descriptionFile string
	skills          string
	json            bool
	keepSession     bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [flags] FILE...",
	Short: "Upload resumes and print them ranked against a job",
	Long: `Upload resumes and print them ranked against a job.

scan runs the same upload and match requests as the wizard without a TUI.
Results are printed in server order as a table, or as JSON with --json.
Skills are a comma separated list, passed to the service exactly as the
wizard sends them.

The backend session is released when scan exits. With --keep-session it is
saved under data_dir instead, so "resumescan open NAME" can fetch the
uploaded resumes later; "resumescan cleanup" releases it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFlags.role, "role", "r", "", "Job role")
	scanCmd.Flags().StringVarP(&scanFlags.description, "description", "d", "", "Job description")
	scanCmd.Flags().StringVarP(&scanFlags.descriptionFile, "description-file", "D", "", "Read the job description from a file")
	scanCmd.Flags().StringVarP(&scanFlags.skills, "skills", "s", "", "Required skills, comma separated")
	scanCmd.Flags().BoolVar(&scanFlags.json, "json", false, "Print results as JSON")
	scanCmd.Flags().BoolVarP(&scanFlags.keepSession, "keep-session", "k", false, "Keep the backend session for later open and cleanup commands")
	scanCmd.MarkFlagsMutuallyExclusive("description", "description-file")
}

func runScan(cmd *cobra.Command, args []string) error {
	description := scanFlags.description
	if scanFlags.descriptionFile != "" {
		data, err := os.ReadFile(scanFlags.descriptionFile)
		if err != nil {
			return fmt.Errorf("failed to read description file: %w", err)
		}
		description = string(data)
	}

	mode := sessionEphemeral
	if scanFlags.keepSession {
		mode = sessionKeep
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, mode)
	if err != nil {
		return err
	}
	defer a.Close()

	// Without --keep-session the scan owns its backend session for the
	// duration of the command.
	if !scanFlags.keepSession {
		defer guardSession(a)()
	}

	outcome, err := a.scanner.Run(ctx, scan.Request{
		Paths:          args,
		JobDescription: description,
		JobRole:        scanFlags.role,
		Skills:         scanFlags.skills,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := colorEnabled(out)
	if scanFlags.json {
		return writeJSON(out, reportFromOutcome(outcome), color)
	}

	_, err = fmt.Fprint(out, renderMarkdown(resultsMarkdown(flow.ResultsHeadline, outcome.Results), color))
	if err == nil && outcome.Record != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recorded as scan %s\n", outcome.Record.ShortID())
	}
	if err == nil && scanFlags.keepSession {
		fmt.Fprintln(cmd.ErrOrStderr(), "Session kept; release it with resumescan cleanup")
	}
	return err
}
