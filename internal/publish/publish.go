// Package publish pushes collected snapshots and state-change events to an
// MQTT broker, with an abstraction for testing. Publishing is best-effort:
// failures are reported to the caller for logging but never stop a poll
// cycle.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/logger"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

// Publisher publishes telemetry to the broker.
type Publisher interface {
	// PublishSnapshot sends one merged snapshot.
	PublishSnapshot(snapshot telemetry.Snapshot) error

	// PublishAnnotation sends one discrete event.
	PublishAnnotation(a annotation.Annotation) error

	// Close disconnects from the broker.
	Close() error
}

// snapshotPayload is the wire shape for snapshot messages.
type snapshotPayload struct {
	Timestamp string `json:"timestamp"`
	telemetry.Fields
	Errors map[string]string `json:"errors,omitempty"`
}

// FormatSnapshot creates the JSON payload for a snapshot message.
func FormatSnapshot(snapshot telemetry.Snapshot) ([]byte, error) {
	return json.Marshal(snapshotPayload{
		Timestamp: snapshot.Timestamp.UTC().Format(time.RFC3339),
		Fields:    snapshot.Fields,
		Errors:    snapshot.Errors,
	})
}

// eventPayload is the wire shape for annotation messages.
type eventPayload struct {
	Timestamp string            `json:"timestamp"`
	Category  string            `json:"category"`
	Title     string            `json:"title"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FormatAnnotation creates the JSON payload for an annotation message.
func FormatAnnotation(a annotation.Annotation) ([]byte, error) {
	return json.Marshal(eventPayload{
		Timestamp: a.StartsAt.UTC().Format(time.RFC3339),
		Category:  a.Category,
		Title:     a.Title,
		Metadata:  a.Metadata,
	})
}

// annotationSink tees annotations to a store and a publisher.
type annotationSink struct {
	store annotation.Writer
	pub   Publisher
}

// AnnotationSink wraps a store so every stored annotation is also published.
// A publish failure does not fail the store write.
func AnnotationSink(store annotation.Writer, pub Publisher) annotation.Writer {
	return &annotationSink{store: store, pub: pub}
}

func (s *annotationSink) Add(ctx context.Context, a annotation.Annotation) error {
	if err := s.store.Add(ctx, a); err != nil {
		return err
	}

	// Best-effort; the annotation is already durable.
	if err := s.pub.PublishAnnotation(a); err != nil {
		logger.Warn().Err(err).Str("title", a.Title).Msg("Annotation publish failed")
	}

	return nil
}
