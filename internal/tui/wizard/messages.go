package wizard

import (
	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// FilesSubmittedMsg is sent by the file picker with the chosen paths.
type FilesSubmittedMsg struct {
	Paths []string
	Dir   string
}

// JobSubmittedMsg is sent when the job step's Next action fires.
type JobSubmittedMsg struct {
	Description string
	Role        string
}

// SkillsSubmittedMsg is sent when the skills step's Scan action fires.
type SkillsSubmittedMsg struct {
	Raw string
}

// OpenRequestedMsg is sent when a result is activated.
type OpenRequestedMsg struct {
	Name string
}

// HiddenToggledMsg is sent when the picker starts or stops listing hidden
// files.
type HiddenToggledMsg struct {
	Show bool
}

// DescriptionEditedMsg carries the job description back from $EDITOR.
// Err is set when the editor failed or its file could not be read back.
type DescriptionEditedMsg struct {
	Content string
	Err     error
}

// UploadDoneMsg reports the end of an upload request.
type UploadDoneMsg struct {
	Ticket flow.Ticket
	Files  []matcher.FileRef
	Err    error
}

// ScanDoneMsg reports the end of a match request.
type ScanDoneMsg struct {
	Ticket  flow.Ticket
	Request matcher.MatchRequest
	Results []matcher.MatchResult
	Err     error
}

// OpenDoneMsg reports the end of an open request.
type OpenDoneMsg struct {
	Ticket flow.Ticket
	Name   string
	Path   string
	Err    error
}
