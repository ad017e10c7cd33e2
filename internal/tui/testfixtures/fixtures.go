package testfixtures

import (
	"time"

	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// Fixed test values for consistent output
const (
	FixedOrigin = "http://127.0.0.1:5000"
	FixedRole   = "Backend Engineer"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// Results returns a ranking in server order, deliberately not sorted by
// score.
func Results() []matcher.MatchResult {
	return []matcher.MatchResult{
		{ResumeName: "bob.pdf", SimilarityScore: 0.42},
		{ResumeName: "alice.pdf", SimilarityScore: 0.87},
		{ResumeName: "carol.docx", SimilarityScore: 0.1},
	}
}

// Record returns a recorded scan built from Results.
func Record() *history.Record {
	return &history.Record{
		ID:             "0b7d3c1e-5f2a-4c1b-9a77-3c5e2f1d0a11",
		Timestamp:      FixedTime,
		Origin:         FixedOrigin,
		JobRole:        FixedRole,
		JobDescription: "Build and run HTTP services",
		Skills:         []string{"Go", "SQL"},
		Files:          []matcher.FileRef{"alice.pdf", "bob.pdf", "carol.docx"},
		Results:        Results(),
	}
}
