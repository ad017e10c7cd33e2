package devbackend

import (
	"bytes"
	"fmt"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// Weights applied to each matched term.
const (
	skillWeight       = 2.0
	descriptionWeight = 1.0
	minTermLength     = 3
)

// Document is one stored resume as seen by the ranker.
type Document struct {
	Name string
	Text string
}

// Rank scores every document against the request and returns at most limit
// results, best first. Scores are the weighted share of request terms found
// in the document, rounded to four decimals.
func Rank(docs []Document, req matcher.MatchRequest, limit int) []matcher.MatchResult {
	terms := requestTerms(req)

	results := make([]matcher.MatchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, matcher.MatchResult{
			ResumeName:      doc.Name,
			SimilarityScore: score(tokenSet(doc.Text), terms),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].ResumeName < results[j].ResumeName
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// requestTerms maps each lowercased term to its weight. Skills outweigh
// words taken from the description and role.
func requestTerms(req matcher.MatchRequest) map[string]float64 {
	terms := make(map[string]float64)
	for _, w := range tokens(req.JobDescription + " " + req.JobRole) {
		if len(w) >= minTermLength {
			terms[w] = descriptionWeight
		}
	}
	for _, skill := range req.SelectedSkills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s != "" {
			terms[s] = skillWeight
		}
	}
	return terms
}

func score(doc map[string]bool, terms map[string]float64) float64 {
	var total, matched float64
	for term, weight := range terms {
		total += weight
		if containsTerm(doc, term) {
			matched += weight
		}
	}
	if total == 0 {
		return 0
	}
	return math.Round(matched/total*10000) / 10000
}

// containsTerm matches single words directly and multi-word skills when
// every word is present.
func containsTerm(doc map[string]bool, term string) bool {
	words := tokens(term)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !doc[w] {
			return false
		}
	}
	return true
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokens(text) {
		set[w] = true
	}
	return set
}

// tokens lowercases text and splits it on anything that is not a letter,
// digit, '+' or '#', so "C++" and "C#" survive.
func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// ExtractText returns the plain text of a resume. PDFs are parsed page by
// page; anything else, or a PDF that fails to parse, is used as raw text.
func ExtractText(name string, data []byte) string {
	if !isPDF(name, data) {
		return string(data)
	}

	text, err := pdfText(data)
	if err != nil {
		logger.Warn("devbackend: pdf extraction failed for %s: %v", name, err)
		return string(data)
	}
	return text
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func isPDF(name string, data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF")) || strings.EqualFold(filepath.Ext(name), ".pdf")
}

func detectContentType(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
