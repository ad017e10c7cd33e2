package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/scan"
	"github.com/stretchr/testify/require"
)

var sampleResults = []matcher.MatchResult{
	{ResumeName: "bob.pdf", SimilarityScore: 0.91},
	{ResumeName: "a|b.pdf", SimilarityScore: 0.5},
}

func TestResultsMarkdown(t *testing.T) {
	md := resultsMarkdown("Top Matching Resumes", sampleResults)
	require.Contains(t, md, "## Top Matching Resumes")
	require.Contains(t, md, "| 1 | bob.pdf | 0.91 |")
	require.Contains(t, md, `| 2 | a\|b.pdf | 0.5 |`)
}

func TestResultsMarkdown_Empty(t *testing.T) {
	require.Contains(t, resultsMarkdown("Ranking", nil), "No matching resumes")
}

func TestRenderMarkdown_NoColorKeepsText(t *testing.T) {
	out := renderMarkdown(resultsMarkdown("Ranking", sampleResults), false)
	require.Contains(t, out, "bob.pdf")
	require.Contains(t, out, "0.91")
}

func TestWriteJSON_Plain(t *testing.T) {
	outcome := &scan.Outcome{
		Files: []matcher.FileRef{"bob.pdf"},
		Request: matcher.MatchRequest{
			JobRole:        "Engineer",
			SelectedSkills: []string{"go"},
		},
		Results: sampleResults,
		Record:  &history.Record{ID: "0123456789"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, reportFromOutcome(outcome), false))

	var got scanReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "0123456789", got.ScanID)
	require.Equal(t, "Engineer", got.JobRole)
	require.Equal(t, sampleResults, got.Results)
	require.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWriteJSON_ColorHighlights(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"n": 1}, true))
	require.Contains(t, buf.String(), "\x1b[")
}

func TestRecordMarkdown(t *testing.T) {
	rec := &history.Record{
		ID:             "abcdef0123456789",
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Origin:         "http://127.0.0.1:5000",
		JobDescription: "Build APIs",
		Skills:         []string{"go", "", "sql"},
		Files:          []matcher.FileRef{"bob.pdf"},
		Results:        sampleResults,
	}
	md := recordMarkdown(rec)
	require.Contains(t, md, "# Scan abcdef01")
	require.Contains(t, md, "**Role:** -")
	require.Contains(t, md, "**Skills:** go, sql")
	require.Contains(t, md, "Build APIs")
	require.Contains(t, md, "bob.pdf")
}

func TestWriteHistoryTable(t *testing.T) {
	records := []*history.Record{
		{ID: "11111111-aaaa", JobRole: "Engineer", Files: []matcher.FileRef{"a", "b"}, Results: sampleResults},
		{ID: "22222222-bbbb"},
	}
	var buf bytes.Buffer
	require.NoError(t, writeHistoryTable(&buf, records))
	out := buf.String()
	require.Contains(t, out, "11111111")
	require.Contains(t, out, "bob.pdf (0.91)")
	require.Contains(t, out, "22222222")
}

func TestValidateOrigin(t *testing.T) {
	require.NoError(t, validateOrigin("http://127.0.0.1:5000"))
	require.NoError(t, validateOrigin(" https://match.example.com "))
	require.Error(t, validateOrigin("ftp://example.com"))
	require.Error(t, validateOrigin("http://"))
	require.Error(t, validateOrigin("localhost:5000"))
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"wizard", "scan", "open", "cleanup", "history", "setup", "mcp", "devserver"} {
		require.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"backend-url", "data-dir", "log-level", "log-file", "request-timeout", "no-history"} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}
