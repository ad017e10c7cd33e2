package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	Base      lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style

	HeaderTitle lipgloss.Style

	// Step indicator
	StepActive        lipgloss.Style
	StepInactive      lipgloss.Style
	ConnectorActive   lipgloss.Style
	ConnectorInactive lipgloss.Style

	// Status line
	StatusBar lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Progress  lipgloss.Style

	// Lists
	ListSelected lipgloss.Style
	ListChecked  lipgloss.Style

	// Modals and inputs
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	AlertContainer lipgloss.Style
	InputBorder    lipgloss.Style
	InputFocused   lipgloss.Style

	// Hint bar
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		Base:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),

		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),

		StepActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true).
			Padding(0, 1),
		StepInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgSurface0)).
			Padding(0, 1),
		ConnectorActive:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		ConnectorInactive: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface2)),

		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).MarginTop(1),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true),
		Progress:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),

		ListSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Background(lipgloss.Color(t.BgSurface0)).
			Bold(true),
		ListChecked: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),

		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Tertiary)).
			Background(lipgloss.Color(t.BgBase)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true).
			Align(lipgloss.Center),
		AlertContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Error)).
			Background(lipgloss.Color(t.BgMantle)).
			Padding(1, 3),
		InputBorder: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderDefault)),
		InputFocused: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocused)),

		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface2)),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.BgOverlay)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true),
	}
}
