// Package flow holds the resume matching wizard as a finite state machine.
// It performs no I/O: callers begin an operation, run the request, and feed
// the outcome back with the ticket they were given.
package flow

import "github.com/mark3labs/resumescan/internal/matcher"

// Step numbers the wizard panels from 1 to 4.
type Step int

const (
	StepUpload Step = iota + 1
	StepJobEntry
	StepSkillsEntry
	StepResults
)

// String returns the panel name.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "Upload"
	case StepJobEntry:
		return "Job"
	case StepSkillsEntry:
		return "Skills"
	case StepResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// State is one of Upload, JobEntry, SkillsEntry or Results.
// Only those four types implement it.
type State interface {
	Step() Step
	isState()
}

// Upload is the initial state. Nothing has been sent yet.
type Upload struct{}

// JobEntry follows a successful upload.
type JobEntry struct {
	Files []matcher.FileRef
}

// SkillsEntry carries the job fields captured when leaving JobEntry.
type SkillsEntry struct {
	Files          []matcher.FileRef
	JobDescription string
	JobRole        string
}

// Results holds the ranking exactly as the server returned it.
type Results struct {
	Files          []matcher.FileRef
	JobDescription string
	JobRole        string
	Skills         []string
	Results        []matcher.MatchResult
}

func (Upload) Step() Step      { return StepUpload }
func (JobEntry) Step() Step    { return StepJobEntry }
func (SkillsEntry) Step() Step { return StepSkillsEntry }
func (Results) Step() Step     { return StepResults }

func (Upload) isState()      {}
func (JobEntry) isState()    {}
func (SkillsEntry) isState() {}
func (Results) isState()     {}
