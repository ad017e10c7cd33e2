package wizard

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/state"
	"github.com/mark3labs/resumescan/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// send delivers msg and then runs the commands it produces, feeding back the
// wizard's own messages until none are left. Other messages (cursor blinks,
// quit) are dropped.
func send(m *WizardModel, msg tea.Msg) {
	_, cmd := m.Update(msg)
	drain(m, cmd)
}

func drain(m *WizardModel, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case FilesSubmittedMsg, UploadDoneMsg, JobSubmittedMsg, SkillsSubmittedMsg,
		ScanDoneMsg, OpenRequestedMsg, OpenDoneMsg, DescriptionEditedMsg, HiddenToggledMsg:
		send(m, msg)
	}
}

type harness struct {
	m        *WizardModel
	dir      string
	backend  *testfixtures.MockBackend
	opener   *testfixtures.MockOpener
	recorder *testfixtures.MockRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir:      t.TempDir(),
		backend:  testfixtures.NewMockBackend(),
		opener:   testfixtures.NewMockOpener(),
		recorder: testfixtures.NewMockRecorder(),
	}
	testfixtures.WriteResumes(t, h.dir, "alice.pdf", "bob.pdf")
	h.backend.Results = testfixtures.Results()

	h.m = New(Options{
		Backend:  h.backend,
		Opener:   h.opener,
		Recorder: h.recorder,
		UIState:  &state.UIState{Picker: state.PickerState{LastDir: h.dir}},
	})
	send(h.m, tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return h
}

// uploadAll checks every file in the picker and submits.
func (h *harness) uploadAll() {
	send(h.m, char('a'))
	send(h.m, ctrl('d'))
}

func (h *harness) advanceToSkills(description, role string) {
	if description != "" {
		send(h.m, tea.PasteMsg{Content: description})
	}
	send(h.m, key(tea.KeyTab))
	if role != "" {
		send(h.m, tea.PasteMsg{Content: role})
	}
	send(h.m, key(tea.KeyEnter))
}

func (h *harness) scan(skills string) {
	if skills != "" {
		send(h.m, tea.PasteMsg{Content: skills})
	}
	send(h.m, ctrl('d'))
}

func (h *harness) step() flow.Step {
	return h.m.Machine().Step()
}

func (h *harness) status() string {
	return h.m.Machine().Status()
}

func TestWizard_HappyPath(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, flow.StepUpload, h.step())
	require.Contains(t, testfixtures.Render(h.m.renderFrame()), "Upload your resumes to get started")

	h.uploadAll()
	require.Equal(t, [][]string{{"alice.pdf", "bob.pdf"}}, h.backend.Uploads())
	require.Equal(t, flow.StepJobEntry, h.step())
	require.Equal(t, flow.StatusUploaded, h.status())
	require.Equal(t, []matcher.FileRef{"alice.pdf", "bob.pdf"}, h.m.Machine().State().(flow.JobEntry).Files)

	h.advanceToSkills("Build APIs", testfixtures.FixedRole)
	require.Equal(t, flow.StepSkillsEntry, h.step())
	skills := h.m.Machine().State().(flow.SkillsEntry)
	require.Equal(t, "Build APIs", skills.JobDescription)
	require.Equal(t, testfixtures.FixedRole, skills.JobRole)

	h.scan("Go, SQL ,Docker")
	require.Equal(t, []matcher.MatchRequest{{
		JobDescription: "Build APIs",
		JobRole:        testfixtures.FixedRole,
		SelectedSkills: []string{"Go", "SQL", "Docker"},
	}}, h.backend.Matches())

	require.Equal(t, flow.StepResults, h.step())
	require.Equal(t, flow.StatusScanned, h.status())
	// Server order is kept.
	require.Equal(t, testfixtures.Results(), h.m.Machine().State().(flow.Results).Results)

	frame := testfixtures.Render(h.m.renderFrame())
	require.Contains(t, frame, flow.ResultsHeadline)
	require.Contains(t, frame, "bob.pdf (Score: 0.42)")
	require.Contains(t, frame, "alice.pdf (Score: 0.87)")
	require.Less(t, strings.Index(frame, "bob.pdf"), strings.Index(frame, "alice.pdf"))

	records := h.recorder.Records()
	require.Len(t, records, 1)
	require.Equal(t, []matcher.FileRef{"alice.pdf", "bob.pdf"}, records[0].Files)
	require.Equal(t, testfixtures.Results(), records[0].Results)
}

func TestWizard_EmptyJobFieldsAdvance(t *testing.T) {
	h := newHarness(t)
	h.uploadAll()

	send(h.m, ctrl('d'))
	require.Equal(t, flow.StepSkillsEntry, h.step())
	skills := h.m.Machine().State().(flow.SkillsEntry)
	require.Empty(t, skills.JobDescription)
	require.Empty(t, skills.JobRole)
}

func TestWizard_SubmitWithoutFilesDoesNothing(t *testing.T) {
	h := newHarness(t)

	send(h.m, ctrl('d'))
	require.Empty(t, h.backend.Uploads())
	require.Equal(t, flow.StepUpload, h.step())
	require.Empty(t, h.status())
}

func TestWizard_EnterOnFileUploadsIt(t *testing.T) {
	h := newHarness(t)

	// ".." then alice.pdf
	send(h.m, key(tea.KeyDown))
	send(h.m, key(tea.KeyEnter))
	require.Equal(t, [][]string{{"alice.pdf"}}, h.backend.Uploads())
}

func TestWizard_UploadFailureStaysOnUpload(t *testing.T) {
	h := newHarness(t)
	h.backend.UploadError = errors.New("500")

	h.uploadAll()
	require.Equal(t, flow.StepUpload, h.step())
	require.Equal(t, flow.StatusUploadFailed, h.status())
	require.Contains(t, testfixtures.Render(h.m.renderFrame()), flow.StatusUploadFailed)

	// Retrying after a failure is allowed.
	h.backend.UploadError = nil
	send(h.m, ctrl('d'))
	require.Equal(t, flow.StepJobEntry, h.step())
}

func TestWizard_StaleUploadIsDropped(t *testing.T) {
	h := newHarness(t)

	first := FilesSubmittedMsg{Paths: []string{filepath.Join(h.dir, "alice.pdf")}}
	second := FilesSubmittedMsg{Paths: []string{filepath.Join(h.dir, "bob.pdf")}}

	_, cmd1 := h.m.Update(first)
	_, cmd2 := h.m.Update(second)
	require.Equal(t, flow.StatusUploading, h.status())

	// The older response arrives first and must not move the wizard.
	h.m.Update(cmd1())
	require.Equal(t, flow.StepUpload, h.step())
	require.Equal(t, flow.StatusUploading, h.status())

	h.m.Update(cmd2())
	require.Equal(t, flow.StepJobEntry, h.step())
	require.Equal(t, []matcher.FileRef{"bob.pdf"}, h.m.Machine().State().(flow.JobEntry).Files)
}

func TestWizard_ScanFailureStaysOnSkills(t *testing.T) {
	h := newHarness(t)
	h.backend.MatchError = errors.New("timeout")
	h.uploadAll()
	h.advanceToSkills("", "")

	h.scan("go")
	require.Equal(t, flow.StepSkillsEntry, h.step())
	require.Equal(t, flow.StatusScanFailed, h.status())
	require.Empty(t, h.recorder.Records())
}

func TestWizard_EmptySkillsSendSingleEmptyToken(t *testing.T) {
	h := newHarness(t)
	h.uploadAll()
	h.advanceToSkills("", "")

	h.scan("")
	require.Equal(t, []string{""}, h.backend.Matches()[0].SelectedSkills)
}

func TestWizard_OpenResume(t *testing.T) {
	h := newHarness(t)
	h.uploadAll()
	h.advanceToSkills("", "")
	h.scan("")

	send(h.m, key(tea.KeyDown))
	send(h.m, key(tea.KeyEnter))
	require.Equal(t, []string{"alice.pdf"}, h.opener.Opened())
	require.Empty(t, h.m.Machine().Alert())
}

func TestWizard_OpenFailureShowsAlert(t *testing.T) {
	h := newHarness(t)
	h.opener.Error = errors.New("404")
	h.uploadAll()
	h.advanceToSkills("", "")
	h.scan("")

	send(h.m, key(tea.KeyEnter))
	require.Equal(t, flow.AlertOpenFailed, h.m.Machine().Alert())
	require.Contains(t, testfixtures.Render(h.m.renderAlert(h.m.Machine().Alert())), flow.AlertOpenFailed)

	// The alert swallows input until dismissed.
	send(h.m, key(tea.KeyDown))
	require.Len(t, h.opener.Opened(), 1)

	send(h.m, key(tea.KeyEnter))
	require.Empty(t, h.m.Machine().Alert())
	require.Equal(t, flow.StepResults, h.step())
	require.Equal(t, testfixtures.Results(), h.m.Machine().State().(flow.Results).Results)
}

func TestWizard_RemembersUploadDirectory(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	testfixtures.WriteResumes(t, filepath.Join(root, "cvs"), "alice.pdf")

	m := New(Options{
		Backend: testfixtures.NewMockBackend(),
		Opener:  testfixtures.NewMockOpener(),
		UIState: &state.UIState{Picker: state.PickerState{LastDir: root}},
		DataDir: dataDir,
	})

	// ".." then "cvs"
	send(m, key(tea.KeyDown))
	send(m, key(tea.KeyEnter))
	require.Equal(t, filepath.Join(root, "cvs"), m.picker.CurrentPath())
	send(m, char('a'))
	send(m, ctrl('d'))

	require.Equal(t, filepath.Join(root, "cvs"), state.Load(dataDir).Picker.LastDir)
}

func TestWizard_RemembersShowHidden(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	testfixtures.WriteResumes(t, root, "alice.pdf", ".draft.pdf")

	m := New(Options{
		Backend: testfixtures.NewMockBackend(),
		Opener:  testfixtures.NewMockOpener(),
		UIState: &state.UIState{Picker: state.PickerState{LastDir: root}},
		DataDir: dataDir,
	})
	require.NotContains(t, testfixtures.Render(m.renderFrame()), ".draft.pdf")

	send(m, char('.'))
	require.Contains(t, testfixtures.Render(m.renderFrame()), ".draft.pdf")
	require.True(t, state.Load(dataDir).Picker.ShowHidden)

	send(m, char('.'))
	require.False(t, state.Load(dataDir).Picker.ShowHidden)

	// A new wizard starts with the saved preference.
	send(m, char('.'))
	again := New(Options{
		Backend: testfixtures.NewMockBackend(),
		Opener:  testfixtures.NewMockOpener(),
		UIState: state.Load(dataDir),
		DataDir: dataDir,
	})
	require.Contains(t, testfixtures.Render(again.renderFrame()), ".draft.pdf")
}

func TestWizard_CtrlCQuits(t *testing.T) {
	h := newHarness(t)
	_, cmd := h.m.Update(ctrl('c'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
}

func TestWizard_SinglePanelPerStep(t *testing.T) {
	headings := map[flow.Step]string{
		flow.StepUpload:      "Upload your resumes to get started",
		flow.StepJobEntry:    "Enter Job Description",
		flow.StepSkillsEntry: "Add Required Skills",
		flow.StepResults:     flow.ResultsHeadline,
	}

	tests := []struct {
		name  string
		drive func(h *harness)
		want  flow.Step
	}{
		{"upload", func(h *harness) {}, flow.StepUpload},
		{"job", func(h *harness) { h.uploadAll() }, flow.StepJobEntry},
		{"skills", func(h *harness) {
			h.uploadAll()
			h.advanceToSkills("", "")
		}, flow.StepSkillsEntry},
		{"results", func(h *harness) {
			h.uploadAll()
			h.advanceToSkills("", "")
			h.scan("go")
		}, flow.StepResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.drive(h)
			require.Equal(t, tt.want, h.step())

			frame := testfixtures.Render(h.m.renderFrame())
			for step, heading := range headings {
				if step == tt.want {
					require.Contains(t, frame, heading)
				} else {
					require.NotContains(t, frame, heading, "panel for step %d rendered during step %d", step, tt.want)
				}
			}
		})
	}
}

func TestRenderStepIndicator(t *testing.T) {
	for step := flow.StepUpload; step <= flow.StepResults; step++ {
		out := testfixtures.Render(renderStepIndicator(step))
		last := -1
		for _, n := range []string{"1", "2", "3", "4"} {
			idx := strings.Index(out, n)
			require.Greater(t, idx, last, "step %s out of order in %q", n, out)
			last = idx
		}
		require.Equal(t, 3, strings.Count(out, "───"))
	}
}

func TestFormatResult(t *testing.T) {
	require.Equal(t, "cv.pdf (Score: 0.8123)", FormatResult(matcher.MatchResult{ResumeName: "cv.pdf", SimilarityScore: 0.8123}))
	require.Equal(t, "cv.pdf (Score: 1)", FormatResult(matcher.MatchResult{ResumeName: "cv.pdf", SimilarityScore: 1}))
}
