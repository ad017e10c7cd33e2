package matcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileRef is the server-reported name of an uploaded resume.
// The backend may report it as a bare string or as an object; both
// decode to the same value.
type FileRef string

// UnmarshalJSON accepts "name", 42, or {"name"|"filename"|"id": ...}.
func (f *FileRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FileRef(s)
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		for _, key := range []string{"name", "filename", "id"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var inner FileRef
			if err := inner.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("file ref %q: %w", key, err)
			}
			*f = inner
			return nil
		}
		return fmt.Errorf("file ref object has no name, filename or id")
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported file ref: %s", data)
		}
		*f = FileRef(n.String())
		return nil
	}
}

// String returns the file name.
func (f FileRef) String() string {
	return string(f)
}

// MatchResult is one ranked resume as returned by the backend.
type MatchResult struct {
	ResumeName      string  `json:"resume_name"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ScoreString formats the score the way the results list shows it.
func (r MatchResult) ScoreString() string {
	return strconv.FormatFloat(r.SimilarityScore, 'f', -1, 64)
}

// MatchRequest is the body of POST /match_resumes.
type MatchRequest struct {
	JobDescription string   `json:"job_description"`
	JobRole        string   `json:"job_role"`
	SelectedSkills []string `json:"selected_skills"`
}

// Upload is one file entry of a resume upload.
type Upload struct {
	Name string
	Data []byte
}

// LoadUploads reads the given paths into upload entries named by their base name.
func LoadUploads(paths []string) ([]Upload, error) {
	uploads := make([]Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		uploads = append(uploads, Upload{Name: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

// Resume is a downloaded resume body.
type Resume struct {
	Name        string
	ContentType string
	Data        []byte
}

type uploadResponse struct {
	Files []FileRef `json:"files"`
}

type matchResponse struct {
	Results []MatchResult `json:"results"`
}
