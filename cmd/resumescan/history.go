package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/tui/theme"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	all  bool
	json bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded scans",
	Long: `Browse scans recorded by the wizard and the scan command.

Scans are kept in an embedded NATS JetStream store under the data directory
for 30 days. Scan ids may be abbreviated to any unique prefix.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded scans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, cleanup, err := openHistoryOnly(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		origin := cfg.BackendURL
		if historyFlags.all {
			origin = ""
		}
		records, err := store.List(cmd.Context(), origin)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyFlags.json {
			reports := make([]scanReport, 0, len(records))
			for _, rec := range records {
				reports = append(reports, reportFromRecord(rec))
			}
			return writeJSON(out, reports, colorEnabled(out))
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "No scans recorded")
			return nil
		}
		return writeHistoryTable(out, records)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one recorded scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, cleanup, err := openHistoryOnly(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color := colorEnabled(out)
		if historyFlags.json {
			return writeJSON(out, reportFromRecord(rec), color)
		}
		_, err = fmt.Fprint(out, renderMarkdown(recordMarkdown(rec), color))
		return err
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff ID ID",
	Short: "Compare the rankings of two recorded scans",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, cleanup, err := openHistoryOnly(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		a, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		b, err := store.Get(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		diff := history.Diff(a, b)
		if diff == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Rankings are identical")
			return nil
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), diff)
		return err
	},
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyFlags.json, "json", false, "Print as JSON")
	historyListCmd.Flags().BoolVarP(&historyFlags.all, "all", "a", false, "Include scans against every backend, not just the configured one")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
}

func writeHistoryTable(w io.Writer, records []*history.Record) error {
	t := theme.Current()
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Primary)).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.BorderMuted))).
		Headers("ID", "WHEN", "ROLE", "RESUMES", "TOP MATCH").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, rec := range records {
		top := "-"
		if len(rec.Results) > 0 {
			top = fmt.Sprintf("%s (%s)", rec.Results[0].ResumeName, rec.Results[0].ScoreString())
		}
		tbl.Row(
			rec.ShortID(),
			rec.Timestamp.Local().Format(time.DateTime),
			orDash(rec.JobRole),
			fmt.Sprint(len(rec.Files)),
			top,
		)
	}

	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

// recordMarkdown describes one scan with its ranking.
func recordMarkdown(rec *history.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan %s\n\n", rec.ShortID())
	fmt.Fprintf(&b, "- **When:** %s\n", rec.Timestamp.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "- **Backend:** %s\n", rec.Origin)
	fmt.Fprintf(&b, "- **Role:** %s\n", orDash(rec.JobRole))
	fmt.Fprintf(&b, "- **Skills:** %s\n", orDash(strings.Join(nonEmpty(rec.Skills), ", ")))
	fmt.Fprintf(&b, "- **Resumes:** %d\n\n", len(rec.Files))
	if rec.JobDescription != "" {
		b.WriteString("## Job description\n\n")
		b.WriteString(rec.JobDescription)
		b.WriteString("\n\n")
	}
	b.WriteString(resultsMarkdown("Ranking", rec.Results))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
