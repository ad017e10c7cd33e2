package flow

import (
	"fmt"

	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// Status strings shown under the active panel.
const (
	StatusUploading    = "Uploading resumes..."
	StatusUploaded     = "Resumes uploaded successfully"
	StatusUploadFailed = "Error uploading resumes"
	StatusScanning     = "Scanning..."
	StatusScanned      = "Scan complete"
	StatusScanFailed   = "Error scanning resumes"
	AlertOpenFailed    = "Error opening resume"
	ResultsHeadline    = "Top Matching Resumes"
)

const ignoredFormat = "ignored %s in step %s"

// Op is an operation class. Each class has its own generation counter.
type Op int

const (
	OpUpload Op = iota
	OpScan
	OpOpen
	opCount
)

func (o Op) String() string {
	switch o {
	case OpUpload:
		return "upload"
	case OpScan:
		return "scan"
	case OpOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ticket identifies one issued request. Only the latest ticket of a class
// may change state when its response arrives.
type Ticket struct {
	Op  Op
	Gen uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithDropEmptySkills filters empty skill tokens before scanning.
func WithDropEmptySkills(drop bool) Option {
	return func(m *Machine) {
		m.dropEmptySkills = drop
	}
}

// Machine owns the wizard state, the shared status line, the blocking alert
// and the per-class generations. It is not safe for concurrent use; the UI
// loop is its only caller.
type Machine struct {
	state  State
	status string
	alert  string
	gens   [opCount]uint64

	dropEmptySkills bool
}

// New returns a machine in the Upload state with an empty status.
func New(opts ...Option) *Machine {
	m := &Machine{state: Upload{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state value.
func (m *Machine) State() State { return m.state }

// Step returns the current step number.
func (m *Machine) Step() Step { return m.state.Step() }

// Status returns the status line.
func (m *Machine) Status() string { return m.status }

// Alert returns the pending blocking alert, or "".
func (m *Machine) Alert() string { return m.alert }

// DismissAlert clears the pending alert.
func (m *Machine) DismissAlert() { m.alert = "" }

func (m *Machine) issue(op Op) Ticket {
	m.gens[op]++
	return Ticket{Op: op, Gen: m.gens[op]}
}

func (m *Machine) current(t Ticket) bool {
	if t.Op < 0 || t.Op >= opCount {
		return false
	}
	if t.Gen != m.gens[t.Op] {
		logger.Debug("dropping stale %s response (gen %d, latest %d)", t.Op, t.Gen, m.gens[t.Op])
		return false
	}
	return true
}

// BeginUpload issues an upload ticket for n files. It returns false and
// changes nothing when n is zero or the wizard has left the Upload step.
func (m *Machine) BeginUpload(n int) (Ticket, bool) {
	if _, ok := m.state.(Upload); !ok || n < 1 {
		logger.Debug(ignoredFormat, fmt.Sprintf("upload of %d files", n), m.Step())
		return Ticket{}, false
	}
	m.status = StatusUploading
	return m.issue(OpUpload), true
}

// CompleteUpload applies an upload outcome. On success the wizard moves to
// JobEntry with files as the uploaded list; on failure it stays in Upload.
// It reports whether the outcome was applied.
func (m *Machine) CompleteUpload(t Ticket, files []matcher.FileRef, err error) bool {
	if t.Op != OpUpload || !m.current(t) {
		return false
	}
	if _, ok := m.state.(Upload); !ok {
		return false
	}
	if err != nil {
		logger.Error("upload failed: %v", err)
		m.status = StatusUploadFailed
		return true
	}
	m.state = JobEntry{Files: append([]matcher.FileRef(nil), files...)}
	m.status = StatusUploaded
	return true
}

// Advance moves from JobEntry to SkillsEntry. Empty fields are accepted.
func (m *Machine) Advance(jobDescription, jobRole string) bool {
	s, ok := m.state.(JobEntry)
	if !ok {
		logger.Debug(ignoredFormat, "advance", m.Step())
		return false
	}
	m.state = SkillsEntry{
		Files:          s.Files,
		JobDescription: jobDescription,
		JobRole:        jobRole,
	}
	return true
}

// BeginScan parses the raw skills input and issues a scan ticket together
// with the request body to send.
func (m *Machine) BeginScan(rawSkills string) (Ticket, matcher.MatchRequest, bool) {
	s, ok := m.state.(SkillsEntry)
	if !ok {
		logger.Debug(ignoredFormat, "scan", m.Step())
		return Ticket{}, matcher.MatchRequest{}, false
	}
	req := matcher.MatchRequest{
		JobDescription: s.JobDescription,
		JobRole:        s.JobRole,
		SelectedSkills: matcher.ParseSkills(rawSkills, m.dropEmptySkills),
	}
	m.status = StatusScanning
	return m.issue(OpScan), req, true
}

// CompleteScan applies a scan outcome. Results are kept in server order.
func (m *Machine) CompleteScan(t Ticket, req matcher.MatchRequest, results []matcher.MatchResult, err error) bool {
	if t.Op != OpScan || !m.current(t) {
		return false
	}
	s, ok := m.state.(SkillsEntry)
	if !ok {
		return false
	}
	if err != nil {
		logger.Error("scan failed: %v", err)
		m.status = StatusScanFailed
		return true
	}
	m.state = Results{
		Files:          s.Files,
		JobDescription: s.JobDescription,
		JobRole:        s.JobRole,
		Skills:         req.SelectedSkills,
		Results:        append([]matcher.MatchResult(nil), results...),
	}
	m.status = StatusScanned
	return true
}

// BeginOpen issues a ticket for fetching one resume from the results list.
func (m *Machine) BeginOpen(name string) (Ticket, bool) {
	if _, ok := m.state.(Results); !ok {
		logger.Debug(ignoredFormat, "open "+name, m.Step())
		return Ticket{}, false
	}
	return m.issue(OpOpen), true
}

// CompleteOpen raises the blocking alert on failure. It never changes the
// state or the results.
func (m *Machine) CompleteOpen(t Ticket, err error) bool {
	if t.Op != OpOpen || !m.current(t) {
		return false
	}
	if err != nil {
		logger.Error("open resume failed: %v", err)
		m.alert = AlertOpenFailed
	}
	return true
}
