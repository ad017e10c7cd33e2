// Package wizard renders the four-step resume matching flow as a Bubbletea
// program on top of flow.Machine.
package wizard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/state"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// Backend is the part of the matching service the wizard calls directly.
type Backend interface {
	UploadResumes(ctx context.Context, uploads []matcher.Upload) ([]matcher.FileRef, error)
	MatchResumes(ctx context.Context, req matcher.MatchRequest) ([]matcher.MatchResult, error)
}

// Opener fetches a resume and shows it to the user.
type Opener interface {
	Open(ctx context.Context, name string) (string, error)
}

// Recorder journals completed scans.
type Recorder interface {
	Remember(ctx context.Context, files []matcher.FileRef, req matcher.MatchRequest, results []matcher.MatchResult) *history.Record
}

// Options configures the wizard.
type Options struct {
	Context context.Context
	Backend Backend
	Opener  Opener
	// Recorder is optional.
	Recorder        Recorder
	DropEmptySkills bool
	// UIState seeds the file picker; the upload directory is written back to
	// DataDir when DataDir is set.
	UIState *state.UIState
	DataDir string
}

// WizardModel is the main BubbleTea model for the resume wizard.
type WizardModel struct {
	ctx      context.Context
	backend  Backend
	opener   Opener
	recorder Recorder
	prefs    *state.UIState
	dataDir  string

	machine *flow.Machine
	width   int
	height  int

	// Step components, created on entry to their step
	picker  *FilePickerStep
	job     *JobStep
	skills  *SkillsStep
	results *ResultsStep
}

// New creates the wizard in the upload step.
func New(opts Options) *WizardModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	prefs := opts.UIState
	if prefs == nil {
		prefs = state.DefaultUIState()
	}

	return &WizardModel{
		ctx:      ctx,
		backend:  opts.Backend,
		opener:   opts.Opener,
		recorder: opts.Recorder,
		prefs:    prefs,
		dataDir:  opts.DataDir,
		machine:  flow.New(flow.WithDropEmptySkills(opts.DropEmptySkills)),
		picker:   NewFilePickerStep(prefs.StartDir(), prefs.Picker.ShowHidden),
		width:    80,
		height:   24,
	}
}

// Run is the entry point for the wizard. It blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithContext(m.ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	return nil
}

// Machine exposes the underlying state machine.
func (m *WizardModel) Machine() *flow.Machine {
	return m.machine
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The alert is modal until dismissed.
		if m.machine.Alert() != "" {
			switch msg.String() {
			case "enter", "esc", "space":
				m.machine.DismissAlert()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateCurrentStepSize()
		return m, nil

	case FilesSubmittedMsg:
		return m, m.beginUpload(msg)

	case HiddenToggledMsg:
		if m.prefs.Picker.ShowHidden != msg.Show {
			m.prefs.Picker.ShowHidden = msg.Show
			m.savePrefs()
		}
		return m, nil

	case UploadDoneMsg:
		if m.machine.CompleteUpload(msg.Ticket, msg.Files, msg.Err) && m.machine.Step() == flow.StepJobEntry {
			m.job = NewJobStep()
			m.updateCurrentStepSize()
			return m, m.job.Init()
		}
		return m, nil

	case JobSubmittedMsg:
		if m.machine.Advance(msg.Description, msg.Role) {
			m.skills = NewSkillsStep()
			m.updateCurrentStepSize()
			return m, m.skills.Init()
		}
		return m, nil

	case SkillsSubmittedMsg:
		return m, m.beginScan(msg.Raw)

	case ScanDoneMsg:
		return m, m.completeScan(msg)

	case OpenRequestedMsg:
		return m, m.beginOpen(msg.Name)

	case OpenDoneMsg:
		m.machine.CompleteOpen(msg.Ticket, msg.Err)
		if msg.Err == nil {
			logger.Info("opened %s at %s", msg.Name, msg.Path)
		}
		return m, nil
	}

	// Forward to current step
	var cmd tea.Cmd
	switch m.machine.Step() {
	case flow.StepUpload:
		cmd = m.picker.Update(msg)
	case flow.StepJobEntry:
		cmd = m.job.Update(msg)
	case flow.StepSkillsEntry:
		cmd = m.skills.Update(msg)
	case flow.StepResults:
		cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *WizardModel) beginUpload(msg FilesSubmittedMsg) tea.Cmd {
	ticket, ok := m.machine.BeginUpload(len(msg.Paths))
	if !ok {
		return nil
	}
	m.rememberDir(msg.Dir)

	ctx, backend, paths := m.ctx, m.backend, msg.Paths
	return func() tea.Msg {
		uploads, err := matcher.LoadUploads(paths)
		if err != nil {
			return UploadDoneMsg{Ticket: ticket, Err: err}
		}
		files, err := backend.UploadResumes(ctx, uploads)
		return UploadDoneMsg{Ticket: ticket, Files: files, Err: err}
	}
}

// rememberDir persists the upload directory for the next run.
func (m *WizardModel) rememberDir(dir string) {
	if dir == "" || m.prefs.Picker.LastDir == dir {
		return
	}
	m.prefs.Picker.LastDir = dir
	m.savePrefs()
}

func (m *WizardModel) savePrefs() {
	if m.dataDir == "" {
		return
	}
	if err := state.Save(m.dataDir, m.prefs); err != nil {
		logger.Warn("failed to save UI state: %v", err)
	}
}

func (m *WizardModel) beginScan(raw string) tea.Cmd {
	ticket, req, ok := m.machine.BeginScan(raw)
	if !ok {
		return nil
	}

	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		results, err := backend.MatchResumes(ctx, req)
		return ScanDoneMsg{Ticket: ticket, Request: req, Results: results, Err: err}
	}
}

func (m *WizardModel) completeScan(msg ScanDoneMsg) tea.Cmd {
	if !m.machine.CompleteScan(msg.Ticket, msg.Request, msg.Results, msg.Err) || msg.Err != nil {
		return nil
	}
	res, ok := m.machine.State().(flow.Results)
	if !ok {
		return nil
	}

	m.results = NewResultsStep(res.Results)
	m.updateCurrentStepSize()

	if m.recorder == nil {
		return nil
	}
	ctx, recorder := m.ctx, m.recorder
	return func() tea.Msg {
		recorder.Remember(ctx, res.Files, msg.Request, res.Results)
		return nil
	}
}

func (m *WizardModel) beginOpen(name string) tea.Cmd {
	ticket, ok := m.machine.BeginOpen(name)
	if !ok {
		return nil
	}

	ctx, opener := m.ctx, m.opener
	return func() tea.Msg {
		path, err := opener.Open(ctx, name)
		return OpenDoneMsg{Ticket: ticket, Name: name, Path: path, Err: err}
	}
}

// updateCurrentStepSize updates the size of the current step component.
func (m *WizardModel) updateCurrentStepSize() {
	w, h := m.contentSize()
	switch m.machine.Step() {
	case flow.StepUpload:
		m.picker.SetSize(w, h)
	case flow.StepJobEntry:
		m.job.SetSize(w, h)
	case flow.StepSkillsEntry:
		m.skills.SetSize(w, h)
	case flow.StepResults:
		m.results.SetSize(w, h)
	}
}

// contentSize is the panel area inside the modal frame.
func (m *WizardModel) contentSize() (int, int) {
	// border, padding, step header, status line
	width := min(max(m.width-10, 40), 100)
	height := max(m.height-10, 10)
	return width, height
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.renderFrame()).Draw(canvas, canvas.Bounds())

	if alert := m.machine.Alert(); alert != "" {
		box := m.renderAlert(alert)
		w, h := lipgloss.Width(box), lipgloss.Height(box)
		x := max((m.width-w)/2, 0)
		y := max((m.height-h)/2, 0)
		uv.NewStyledString(box).Draw(canvas, uv.Rectangle{
			Min: uv.Position{X: x, Y: y},
			Max: uv.Position{X: x + w, Y: y + h},
		})
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = theme.HexToColor(theme.Current().BgCrust)
	return view
}

// renderFrame draws the step indicator, the active panel and the status line
// inside a centered modal container.
func (m *WizardModel) renderFrame() string {
	s := theme.Current().S()
	width, _ := m.contentSize()

	sections := []string{
		lipgloss.PlaceHorizontal(width, lipgloss.Center, renderStepIndicator(m.machine.Step())),
		"",
		m.renderPanel(),
	}
	if status := m.renderStatus(); status != "" {
		sections = append(sections, s.StatusBar.Render(status))
	}

	modal := s.ModalContainer.Width(width + 6).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderPanel renders exactly one panel for the current state.
func (m *WizardModel) renderPanel() string {
	switch m.machine.Step() {
	case flow.StepUpload:
		return lipgloss.JoinVertical(lipgloss.Left,
			renderHeading("Upload your resumes to get started"),
			"",
			m.picker.View(),
		)
	case flow.StepJobEntry:
		return m.job.View()
	case flow.StepSkillsEntry:
		return m.skills.View()
	case flow.StepResults:
		return m.results.View()
	}
	return ""
}

// renderStatus colors the shared status string by outcome.
func (m *WizardModel) renderStatus() string {
	s := theme.Current().S()
	status := m.machine.Status()
	switch status {
	case "":
		return ""
	case flow.StatusUploadFailed, flow.StatusScanFailed:
		return s.Error.Render(status)
	case flow.StatusUploading, flow.StatusScanning:
		return s.Progress.Render(status)
	default:
		return s.Success.Render(status)
	}
}

func (m *WizardModel) renderAlert(text string) string {
	s := theme.Current().S()
	body := lipgloss.JoinVertical(lipgloss.Center,
		s.Error.Render(text),
		"",
		singleButton("OK", true, lipgloss.Width(text)+8),
	)
	return s.AlertContainer.Render(body)
}
