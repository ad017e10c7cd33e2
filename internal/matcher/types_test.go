package matcher

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSkills(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		dropEmpty bool
		want      []string
	}{
		{"trailing comma kept", "a, b ,c,", false, []string{"a", "b", "c", ""}},
		{"trailing comma dropped", "a, b ,c,", true, []string{"a", "b", "c"}},
		{"empty input", "", false, []string{""}},
		{"empty input dropped", "", true, []string{}},
		{"doubled comma", "go,,sql", false, []string{"go", "", "sql"}},
		{"inner spaces survive", " machine learning , go ", false, []string{"machine learning", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseSkills(tt.raw, tt.dropEmpty))
		})
	}
}

func TestFileRef_Unmarshal(t *testing.T) {
	var resp uploadResponse
	err := json.Unmarshal([]byte(`{"files":["a.pdf",{"name":"b.pdf"},{"filename":"c.pdf"},{"id":7},12,null]}`), &resp)
	require.NoError(t, err)
	require.Equal(t, []FileRef{"a.pdf", "b.pdf", "c.pdf", "7", "12", ""}, resp.Files)

	var bad FileRef
	require.Error(t, json.Unmarshal([]byte(`{"size":3}`), &bad))
	require.Error(t, json.Unmarshal([]byte(`[1]`), &bad))
}

func TestMatchResult_ScoreString(t *testing.T) {
	require.Equal(t, "0.9", MatchResult{SimilarityScore: 0.9}.ScoreString())
	require.Equal(t, "0.8123", MatchResult{SimilarityScore: 0.8123}.ScoreString())
	require.Equal(t, "1", MatchResult{SimilarityScore: 1}.ScoreString())
}

func TestLoadUploads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jane.txt")
	require.NoError(t, os.WriteFile(path, []byte("golang"), 0644))

	uploads, err := LoadUploads([]string{path})
	require.NoError(t, err)
	require.Equal(t, []Upload{{Name: "jane.txt", Data: []byte("golang")}}, uploads)

	_, err = LoadUploads([]string{filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)
}
