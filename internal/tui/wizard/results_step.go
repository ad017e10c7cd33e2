package wizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// ResultsStep lists ranked resumes in server order.
type ResultsStep struct {
	results     []matcher.MatchResult
	selectedIdx int
	offset      int
	width       int
	height      int
}

// NewResultsStep creates the results step.
func NewResultsStep(results []matcher.MatchResult) *ResultsStep {
	return &ResultsStep{
		results: results,
		width:   60,
		height:  20,
	}
}

// SetResults replaces the list, keeping the cursor in range.
func (r *ResultsStep) SetResults(results []matcher.MatchResult) {
	r.results = results
	if r.selectedIdx >= len(results) {
		r.selectedIdx = max(len(results)-1, 0)
	}
	r.keepCursorVisible()
}

// SetSize updates the dimensions for the results step.
func (r *ResultsStep) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.keepCursorVisible()
}

func (r *ResultsStep) listHeight() int {
	// heading, blank, blank, hints
	return max(r.height-4, 3)
}

// Update handles messages for the results step.
func (r *ResultsStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(r.results) == 0 {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if r.selectedIdx > 0 {
			r.selectedIdx--
		}
	case "down", "j":
		if r.selectedIdx < len(r.results)-1 {
			r.selectedIdx++
		}
	case "home", "g":
		r.selectedIdx = 0
	case "end", "G":
		r.selectedIdx = len(r.results) - 1
	case "enter", "o":
		name := r.results[r.selectedIdx].ResumeName
		return func() tea.Msg {
			return OpenRequestedMsg{Name: name}
		}
	}
	r.keepCursorVisible()
	return nil
}

func (r *ResultsStep) keepCursorVisible() {
	h := r.listHeight()
	if r.selectedIdx < r.offset {
		r.offset = r.selectedIdx
	}
	if r.selectedIdx >= r.offset+h {
		r.offset = r.selectedIdx - h + 1
	}
}

// FormatResult renders one entry as "name (Score: x)".
func FormatResult(res matcher.MatchResult) string {
	return fmt.Sprintf("%s (Score: %s)", res.ResumeName, res.ScoreString())
}

// scoreColor blends from the error color to the success color by score.
func scoreColor(score float64) string {
	t := theme.Current()
	pos := min(max(score, 0), 1)
	return theme.InterpolateColor(t.Error, t.Success, pos)
}

// View renders the results step.
func (r *ResultsStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(renderHeading(flow.ResultsHeadline))
	b.WriteString("\n\n")

	if len(r.results) == 0 {
		b.WriteString(s.Muted.Italic(true).Render("No matching resumes"))
		b.WriteString("\n")
	}

	end := min(r.offset+r.listHeight(), len(r.results))
	for i := r.offset; i < end; i++ {
		res := r.results[i]
		bullet := lipgloss.NewStyle().Foreground(lipgloss.Color(scoreColor(res.SimilarityScore))).Render("●")
		line := FormatResult(res)
		if i == r.selectedIdx {
			line = "▸ " + s.ListSelected.Render(line)
		} else {
			line = "  " + s.Base.Render(line)
		}
		b.WriteString(bullet + " " + line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"enter", "open resume",
		"ctrl+c", "quit",
	))
	return b.String()
}

// Selected returns the result under the cursor, if any.
func (r *ResultsStep) Selected() (matcher.MatchResult, bool) {
	if r.selectedIdx < 0 || r.selectedIdx >= len(r.results) {
		return matcher.MatchResult{}, false
	}
	return r.results[r.selectedIdx], true
}
