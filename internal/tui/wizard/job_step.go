package wizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// Focus targets on the job step.
const (
	jobFocusDescription = iota
	jobFocusRole
	jobFocusNext
	jobFocusCount
)

// JobStep collects the job description and job role.
type JobStep struct {
	description textarea.Model
	role        textinput.Model
	focusIndex  int
	width       int
	height      int
	tmpFile     string // Temp file used by the external editor
}

// NewJobStep creates the job step with the description focused.
func NewJobStep() *JobStep {
	ta := textarea.New()
	ta.Placeholder = "Enter job description here..."
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "Enter job role"
	ti.Prompt = ""
	ti.SetStyles(inputStyles())
	ti.SetWidth(60)

	return &JobStep{
		description: ta,
		role:        ti,
		width:       60,
		height:      20,
	}
}

// inputStyles builds textinput styles from the current theme.
func inputStyles() textinput.Styles {
	t := theme.Current()
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

// Init starts the cursor blink.
func (j *JobStep) Init() tea.Cmd {
	return textarea.Blink
}

// SetSize updates the dimensions for the job step.
func (j *JobStep) SetSize(width, height int) {
	j.width = width
	j.height = height
	j.description.SetWidth(width - 4)
	j.role.SetWidth(width - 4)

	// headings, role input, button, hints
	h := height - 12
	if h < 3 {
		h = 3
	}
	if h > 12 {
		h = 12
	}
	j.description.SetHeight(h)
}

// Update handles messages for the job step.
func (j *JobStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DescriptionEditedMsg:
		j.removeTmpFile()
		if msg.Err != nil {
			logger.Warn("keeping job description, editor failed: %v", msg.Err)
			return nil
		}
		j.description.SetValue(msg.Content)
		return nil

	case tea.PasteMsg:
		content := SanitizePaste(msg.Content)
		switch j.focusIndex {
		case jobFocusDescription:
			j.description.InsertString(content)
		case jobFocusRole:
			j.role.SetValue(j.role.Value() + collapseNewlines(content))
			j.role.CursorEnd()
		}
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			return j.setFocus((j.focusIndex + 1) % jobFocusCount)
		case "shift+tab":
			return j.setFocus((j.focusIndex + jobFocusCount - 1) % jobFocusCount)
		case "ctrl+d":
			return j.Submit()
		case "ctrl+e":
			return j.openEditor()
		case "enter":
			if j.focusIndex != jobFocusDescription {
				return j.Submit()
			}
		}
	}

	var cmd tea.Cmd
	switch j.focusIndex {
	case jobFocusDescription:
		j.description, cmd = j.description.Update(msg)
	case jobFocusRole:
		j.role, cmd = j.role.Update(msg)
	}
	return cmd
}

func (j *JobStep) setFocus(idx int) tea.Cmd {
	j.focusIndex = idx
	j.description.Blur()
	j.role.Blur()
	switch idx {
	case jobFocusDescription:
		return j.description.Focus()
	case jobFocusRole:
		return j.role.Focus()
	}
	return nil
}

// Submit emits the Next action. Empty values are accepted.
func (j *JobStep) Submit() tea.Cmd {
	desc, role := j.description.Value(), j.role.Value()
	return func() tea.Msg {
		return JobSubmittedMsg{Description: desc, Role: role}
	}
}

// openEditor launches $EDITOR on the current description.
func (j *JobStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "resumescan_job_*.md")
	if err != nil {
		logger.Warn("failed to create temp file for editor: %v", err)
		return nil
	}

	if _, err := tmpfile.WriteString(j.description.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	j.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("resumescan", tmpfile.Name())
	if err != nil {
		logger.Warn("no editor available: %v", err)
		j.removeTmpFile()
		return nil
	}

	return tea.ExecProcess(cmd, editorDone(tmpfile.Name()))
}

// editorDone reads the edited file back. Every outcome produces a
// DescriptionEditedMsg so the temp file is always removed.
func editorDone(path string) tea.ExecCallback {
	return func(err error) tea.Msg {
		if err != nil {
			return DescriptionEditedMsg{Err: fmt.Errorf("editor exited: %w", err)}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return DescriptionEditedMsg{Err: fmt.Errorf("reading edited description: %w", err)}
		}
		return DescriptionEditedMsg{Content: strings.TrimRight(string(content), "\n")}
	}
}

func (j *JobStep) removeTmpFile() {
	if j.tmpFile != "" {
		_ = os.Remove(j.tmpFile)
		j.tmpFile = ""
	}
}

// View renders the job step.
func (j *JobStep) View() string {
	s := theme.Current().S()

	box := func(focused bool, content string) string {
		style := s.InputBorder
		if focused {
			style = s.InputFocused
		}
		return style.Width(j.width).Render(content)
	}

	parts := []string{
		renderHeading("Enter Job Description"),
		box(j.focusIndex == jobFocusDescription, j.description.View()),
		"",
		renderHeading("Enter Job Role"),
		box(j.focusIndex == jobFocusRole, j.role.View()),
		"",
		singleButton("Next", j.focusIndex == jobFocusNext, j.width),
		"",
		renderHintBar(
			"tab", "next field",
			"ctrl+e", "edit in $EDITOR",
			"ctrl+d", "next",
		),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Description returns the current job description.
func (j *JobStep) Description() string {
	return j.description.Value()
}

// Role returns the current job role.
func (j *JobStep) Role() string {
	return j.role.Value()
}
