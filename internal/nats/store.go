package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "resumescan_scans"
	subjectPrefix = "resumescan"

	// EventTypeScan marks a completed scan.
	EventTypeScan = "scan"

	retention = 30 * 24 * time.Hour
)

// OriginToken turns a backend origin into a single subject token.
// "http://127.0.0.1:5000" becomes "http-127-0-0-1-5000".
func OriginToken(origin string) string {
	token := slug.Make(origin)
	if token == "" {
		return "default"
	}
	return token
}

// SubjectForOrigin returns the wildcard subject for every event recorded
// against one backend origin.
func SubjectForOrigin(origin string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, OriginToken(origin))
}

// SubjectForEvent returns the subject an event of the given type is
// published to.
func SubjectForEvent(origin, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, OriginToken(origin), eventType)
}

// AllSubjects matches every event in the stream.
func AllSubjects() string {
	return subjectPrefix + ".>"
}

// SetupStream creates or updates the scan stream with file storage and
// 30-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{AllSubjects()},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
}

// ReadConsumer creates an ephemeral consumer that replays the stream from
// the beginning, optionally filtered to one subject.
func ReadConsumer(ctx context.Context, stream jetstream.Stream, filter string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
}
