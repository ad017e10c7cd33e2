// Package scan runs the upload and match steps back to back for callers
// that do not drive the wizard: the scan command and the MCP tools. It also
// journals completed scans for every caller, the wizard included.
package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Backend is the part of the matching service a scan needs.
type Backend interface {
	UploadResumes(ctx context.Context, uploads []matcher.Upload) ([]matcher.FileRef, error)
	MatchResumes(ctx context.Context, req matcher.MatchRequest) ([]matcher.MatchResult, error)
}

// Journal stores completed scans.
type Journal interface {
	Record(ctx context.Context, rec history.Record) (*history.Record, error)
}

// Request describes one headless scan.
type Request struct {
	Paths          []string
	JobDescription string
	JobRole        string
	// Skills is the raw comma separated list.
	Skills string
}

// Outcome is the result of a headless scan.
type Outcome struct {
	Files   []matcher.FileRef
	Request matcher.MatchRequest
	Results []matcher.MatchResult
	// Record is nil when history is disabled or the append failed.
	Record *history.Record
}

// Scanner runs scans against one backend origin.
type Scanner struct {
	backend         Backend
	journal         Journal
	origin          string
	dropEmptySkills bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithJournal records every successful scan.
func WithJournal(j Journal) Option {
	return func(s *Scanner) { s.journal = j }
}

// WithDropEmptySkills filters empty skill tokens.
func WithDropEmptySkills(drop bool) Option {
	return func(s *Scanner) { s.dropEmptySkills = drop }
}

// New creates a scanner. origin is recorded with every journaled scan.
func New(backend Backend, origin string, opts ...Option) *Scanner {
	s := &Scanner{backend: backend, origin: origin}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run uploads the files, matches them and journals the outcome.
func (s *Scanner) Run(ctx context.Context, req Request) (*Outcome, error) {
	if len(req.Paths) == 0 {
		return nil, matcher.ErrNoFiles
	}

	ctx, span := tracing.Start(ctx, "scan", attribute.Int("resumes", len(req.Paths)))
	defer span.End()

	uploads, err := matcher.LoadUploads(req.Paths)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	files, err := s.backend.UploadResumes(ctx, uploads)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("uploading resumes: %w", err)
	}
	logger.Info("uploaded %d resumes", len(files))

	match := matcher.MatchRequest{
		JobDescription: req.JobDescription,
		JobRole:        req.JobRole,
		SelectedSkills: matcher.ParseSkills(req.Skills, s.dropEmptySkills),
	}
	results, err := s.backend.MatchResumes(ctx, match)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("scanning resumes: %w", err)
	}
	span.SetAttributes(attribute.Int("results", len(results)))

	return &Outcome{
		Files:   files,
		Request: match,
		Results: results,
		Record:  s.Remember(ctx, files, match, results),
	}, nil
}

// Remember journals a completed scan. Failures are logged and swallowed.
func (s *Scanner) Remember(ctx context.Context, files []matcher.FileRef, req matcher.MatchRequest, results []matcher.MatchResult) *history.Record {
	if s.journal == nil {
		return nil
	}
	rec, err := s.journal.Record(ctx, history.Record{
		Origin:         s.origin,
		JobRole:        req.JobRole,
		JobDescription: req.JobDescription,
		Skills:         req.SelectedSkills,
		Files:          files,
		Results:        results,
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("failed to record scan: %v", err)
		}
		return nil
	}
	return rec
}
