package wizard

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// SkillsStep collects the comma separated skill list.
type SkillsStep struct {
	textarea      textarea.Model
	buttonFocused bool
	width         int
	height        int
}

// NewSkillsStep creates the skills step with the textarea focused.
func NewSkillsStep() *SkillsStep {
	ta := textarea.New()
	ta.Placeholder = "Enter required skills (comma-separated)..."
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(10)
	ta.Focus()

	return &SkillsStep{
		textarea: ta,
		width:    60,
		height:   20,
	}
}

// Init starts the cursor blink.
func (s *SkillsStep) Init() tea.Cmd {
	return textarea.Blink
}

// SetSize updates the dimensions for the skills step.
func (s *SkillsStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.textarea.SetWidth(width - 4)

	h := height - 8
	if h < 3 {
		h = 3
	}
	if h > 10 {
		h = 10
	}
	s.textarea.SetHeight(h)
}

// Update handles messages for the skills step.
func (s *SkillsStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.PasteMsg:
		if !s.buttonFocused {
			s.textarea.InsertString(SanitizePaste(msg.Content))
		}
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			s.buttonFocused = !s.buttonFocused
			if s.buttonFocused {
				s.textarea.Blur()
				return nil
			}
			return s.textarea.Focus()
		case "ctrl+d":
			return s.Submit()
		case "enter":
			if s.buttonFocused {
				return s.Submit()
			}
		}
	}

	if s.buttonFocused {
		return nil
	}
	var cmd tea.Cmd
	s.textarea, cmd = s.textarea.Update(msg)
	return cmd
}

// Submit emits the Scan action with the raw text.
func (s *SkillsStep) Submit() tea.Cmd {
	raw := s.textarea.Value()
	return func() tea.Msg {
		return SkillsSubmittedMsg{Raw: raw}
	}
}

// View renders the skills step.
func (s *SkillsStep) View() string {
	st := theme.Current().S()
	box := st.InputBorder
	if !s.buttonFocused {
		box = st.InputFocused
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeading("Add Required Skills"),
		box.Width(s.width).Render(s.textarea.View()),
		"",
		singleButton("Scan", s.buttonFocused, s.width),
		"",
		renderHintBar(
			"tab", "focus button",
			"ctrl+d", "scan",
		),
	)
}

// Value returns the raw skills text.
func (s *SkillsStep) Value() string {
	return s.textarea.Value()
}
