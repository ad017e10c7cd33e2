package devbackend

import (
	"fmt"
	"testing"

	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	docs := []Document{
		{Name: "alice.pdf", Text: "Go developer with Kubernetes and Docker experience"},
		{Name: "bob.pdf", Text: "Python data scientist"},
		{Name: "carol.pdf", Text: "Backend engineer writing Go and C++"},
	}

	tests := []struct {
		name   string
		req    matcher.MatchRequest
		want   []string
		scores []float64
	}{
		{
			name:   "skills only",
			req:    matcher.MatchRequest{SelectedSkills: []string{"go", "docker"}},
			want:   []string{"alice.pdf", "carol.pdf", "bob.pdf"},
			scores: []float64{1, 0.5, 0},
		},
		{
			name:   "description words weigh less",
			req:    matcher.MatchRequest{JobDescription: "backend engineer", SelectedSkills: []string{"go"}},
			want:   []string{"carol.pdf", "alice.pdf", "bob.pdf"},
			scores: []float64{1, 0.5, 0},
		},
		{
			name:   "symbols survive tokenizing",
			req:    matcher.MatchRequest{SelectedSkills: []string{"C++"}},
			want:   []string{"carol.pdf", "alice.pdf", "bob.pdf"},
			scores: []float64{1, 0, 0},
		},
		{
			name:   "empty request scores zero",
			req:    matcher.MatchRequest{SelectedSkills: []string{""}},
			want:   []string{"alice.pdf", "bob.pdf", "carol.pdf"},
			scores: []float64{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(docs, tt.req, TopN)
			require.Len(t, got, len(tt.want))
			for i := range got {
				require.Equal(t, tt.want[i], got[i].ResumeName)
				require.Equal(t, tt.scores[i], got[i].SimilarityScore)
			}
		})
	}
}

func TestRank_RoundsToFourDecimals(t *testing.T) {
	docs := []Document{{Name: "a", Text: "go"}}
	got := Rank(docs, matcher.MatchRequest{SelectedSkills: []string{"go", "rust", "java"}}, TopN)
	require.Equal(t, 0.3333, got[0].SimilarityScore)
}

func TestRank_MultiWordSkill(t *testing.T) {
	docs := []Document{
		{Name: "a", Text: "Machine learning researcher"},
		{Name: "b", Text: "Machine operator"},
	}
	got := Rank(docs, matcher.MatchRequest{SelectedSkills: []string{"machine learning"}}, TopN)
	require.Equal(t, "a", got[0].ResumeName)
	require.Equal(t, 1.0, got[0].SimilarityScore)
	require.Equal(t, 0.0, got[1].SimilarityScore)
}

func TestRank_Limit(t *testing.T) {
	var docs []Document
	for i := range 12 {
		docs = append(docs, Document{Name: fmt.Sprintf("r%02d", i), Text: "go"})
	}
	got := Rank(docs, matcher.MatchRequest{SelectedSkills: []string{"go"}}, TopN)
	require.Len(t, got, TopN)
	require.Equal(t, "r00", got[0].ResumeName)
}

func TestExtractText(t *testing.T) {
	require.Equal(t, "plain resume", ExtractText("cv.txt", []byte("plain resume")))

	// Broken PDFs fall back to the raw bytes.
	broken := []byte("%PDF-1.4 not really a pdf")
	require.Equal(t, string(broken), ExtractText("cv.pdf", broken))
}

func TestDetectContentType(t *testing.T) {
	require.Equal(t, "application/pdf", detectContentType("cv.pdf", "application/pdf", nil))
	require.Equal(t, "application/pdf", detectContentType("cv.pdf", "application/octet-stream", nil))
	require.Contains(t, detectContentType("cv", "", []byte("hello")), "text/plain")
}
