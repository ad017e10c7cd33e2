// Package history journals completed scans in the embedded JetStream
// stream so earlier rankings can be listed, shown and compared.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/mark3labs/resumescan/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// ErrNotFound is returned by Get when no record matches.
var ErrNotFound = errors.New("scan not found")

// Record is one completed scan.
type Record struct {
	ID             string                `json:"id"`
	Timestamp      time.Time             `json:"timestamp"`
	Origin         string                `json:"origin"`
	JobRole        string                `json:"job_role"`
	JobDescription string                `json:"job_description"`
	Skills         []string              `json:"skills"`
	Files          []matcher.FileRef     `json:"files"`
	Results        []matcher.MatchResult `json:"results"`
}

// ShortID returns the first eight characters of the id.
func (r *Record) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// Store appends and replays scan records.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a store on an existing JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Record appends a scan. ID and timestamp are filled in when empty.
func (s *Store) Record(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan: %w", err)
	}

	subject := nats.SubjectForEvent(rec.Origin, nats.EventTypeScan)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("failed to publish scan: %w", err)
	}

	logger.Debug("recorded scan %s on %s (seq=%d)", rec.ShortID(), subject, ack.Sequence)
	return &rec, nil
}

// List returns records newest first. An empty origin lists every origin.
func (s *Store) List(ctx context.Context, origin string) ([]*Record, error) {
	filter := nats.AllSubjects()
	if origin != "" {
		filter = nats.SubjectForOrigin(origin)
	}

	consumer, err := nats.ReadConsumer(ctx, s.stream, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	const batchSize = 500
	var records []*Record
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var rec Record
			if err := json.Unmarshal(msg.Data(), &rec); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			records = append(records, &rec)
			_ = msg.Ack()
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("skipped %d malformed scan records", malformed)
	}

	slices.Reverse(records)
	return records, nil
}

// Get finds a record by id or unique id prefix.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Record, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	records, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var matches []*Record
	for _, r := range records {
		if r.ID == idOrPrefix {
			return r, nil
		}
		if strings.HasPrefix(r.ID, idOrPrefix) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous scan id prefix %q matches %d scans", idOrPrefix, len(matches))
	}
}

// FormatRanking renders results one per line as "N. name (Score: x)".
func FormatRanking(results []matcher.MatchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (Score: %s)\n", i+1, r.ResumeName, r.ScoreString())
	}
	return b.String()
}

// Diff returns a unified diff of two rankings. It is empty when they match.
func Diff(a, b *Record) string {
	return udiff.Unified(
		"scan "+a.ShortID(),
		"scan "+b.ShortID(),
		FormatRanking(a.Results),
		FormatRanking(b.Results),
	)
}
