package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/glamour/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/scan"
)

const maxRenderWidth = 120

// scanReport is the --json shape of a scan.
type scanReport struct {
	ScanID         string                `json:"scan_id,omitempty"`
	JobRole        string                `json:"job_role"`
	JobDescription string                `json:"job_description"`
	Skills         []string              `json:"skills"`
	Files          []matcher.FileRef     `json:"files"`
	Results        []matcher.MatchResult `json:"results"`
}

func reportFromOutcome(o *scan.Outcome) scanReport {
	r := scanReport{
		JobRole:        o.Request.JobRole,
		JobDescription: o.Request.JobDescription,
		Skills:         o.Request.SelectedSkills,
		Files:          o.Files,
		Results:        o.Results,
	}
	if o.Record != nil {
		r.ScanID = o.Record.ID
	}
	return r
}

func reportFromRecord(rec *history.Record) scanReport {
	return scanReport{
		ScanID:         rec.ID,
		JobRole:        rec.JobRole,
		JobDescription: rec.JobDescription,
		Skills:         rec.Skills,
		Files:          rec.Files,
		Results:        rec.Results,
	}
}

// colorEnabled reports whether w is a terminal that accepts ANSI colors.
func colorEnabled(w io.Writer) bool {
	switch colorprofile.Detect(w, os.Environ()) {
	case colorprofile.NoTTY, colorprofile.Ascii:
		return false
	}
	return true
}

// resultsMarkdown renders the ranking as a markdown table.
func resultsMarkdown(title string, results []matcher.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	if len(results) == 0 {
		b.WriteString("_No matching resumes_\n")
		return b.String()
	}
	b.WriteString("| # | Resume | Score |\n")
	b.WriteString("|---|--------|-------|\n")
	for i, r := range results {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, escapeCell(r.ResumeName), r.ScoreString())
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderMarkdown renders markdown with glamour. Falls back to the raw
// markdown if rendering fails.
func renderMarkdown(content string, color bool) string {
	style := "notty"
	if color {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(maxRenderWidth),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// writeJSON writes v as indented JSON, highlighted when color is set.
func writeJSON(w io.Writer, v any, color bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if color {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, string(data), "json", "terminal16m", "monokai"); err == nil {
			_, err = w.Write(buf.Bytes())
			return err
		}
	}
	_, err = w.Write(data)
	return err
}
