// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// This file contains mock implementations for the wizard's dependencies:
//   - MockBackend: upload and match calls against the matching service
//   - MockOpener: opening a resume by name
//   - MockRecorder: journaling a completed scan
//
// All mocks are thread-safe and provide verification methods for assertions in tests.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    backend := testfixtures.NewMockBackend()
//	    backend.Results = testfixtures.Results()
//
//	    // Use mocks in your test...
//	    // Later verify calls:
//	    require.Len(t, backend.Uploads(), 1)
//	}
package testfixtures

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// MockBackend is a mock implementation of the matching service.
// Uploaded names are echoed back as file refs.
type MockBackend struct {
	mu sync.Mutex

	// Results to return from MatchResumes
	Results []matcher.MatchResult
	// Error to return from UploadResumes
	UploadError error
	// Error to return from MatchResumes
	MatchError error

	uploads [][]matcher.Upload
	matches []matcher.MatchRequest
}

// NewMockBackend creates a backend that accepts everything.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// UploadResumes records the upload.
func (m *MockBackend) UploadResumes(_ context.Context, uploads []matcher.Upload) ([]matcher.FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = append(m.uploads, slices.Clone(uploads))
	if m.UploadError != nil {
		return nil, m.UploadError
	}
	refs := make([]matcher.FileRef, len(uploads))
	for i, u := range uploads {
		refs[i] = matcher.FileRef(u.Name)
	}
	return refs, nil
}

// MatchResumes records the request.
func (m *MockBackend) MatchResumes(_ context.Context, req matcher.MatchRequest) ([]matcher.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.matches = append(m.matches, req)
	if m.MatchError != nil {
		return nil, m.MatchError
	}
	return slices.Clone(m.Results), nil
}

// Uploads returns the uploaded names of every call, in call order.
func (m *MockBackend) Uploads() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(m.uploads))
	for i, call := range m.uploads {
		for _, u := range call {
			out[i] = append(out[i], u.Name)
		}
	}
	return out
}

// Matches returns every match request, in call order.
func (m *MockBackend) Matches() []matcher.MatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.matches)
}

// MockOpener is a mock resume opener.
type MockOpener struct {
	mu sync.Mutex

	// Error to return from Open
	Error error

	names []string
}

// NewMockOpener creates an opener that always succeeds.
func NewMockOpener() *MockOpener {
	return &MockOpener{}
}

// Open records the name and returns a fake path.
func (m *MockOpener) Open(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.names = append(m.names, name)
	if m.Error != nil {
		return "", m.Error
	}
	return fmt.Sprintf("/tmp/resumescan-test/%s", name), nil
}

// Opened returns the names passed to Open, in call order.
func (m *MockOpener) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.names)
}

// MockRecorder is a mock scan journal.
type MockRecorder struct {
	mu      sync.Mutex
	records []history.Record
}

// NewMockRecorder creates an empty recorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

// Remember records the scan.
func (m *MockRecorder) Remember(_ context.Context, files []matcher.FileRef, req matcher.MatchRequest, results []matcher.MatchResult) *history.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := history.Record{
		ID:             fmt.Sprintf("scan-%d", len(m.records)+1),
		Timestamp:      FixedTime,
		Origin:         FixedOrigin,
		JobRole:        req.JobRole,
		JobDescription: req.JobDescription,
		Skills:         slices.Clone(req.SelectedSkills),
		Files:          slices.Clone(files),
		Results:        slices.Clone(results),
	}
	m.records = append(m.records, rec)
	return &rec
}

// Records returns every remembered scan.
func (m *MockRecorder) Records() []history.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}
