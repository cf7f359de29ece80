package publish

import (
	"sync"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Snapshots contains all snapshots that were published.
	Snapshots []telemetry.Snapshot

	// Annotations contains all annotations that were published.
	Annotations []annotation.Annotation

	// PublishError, if set, is returned by both publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishSnapshot(snapshot telemetry.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	f.Snapshots = append(f.Snapshots, snapshot)

	return nil
}

func (f *FakePublisher) PublishAnnotation(a annotation.Annotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	f.Annotations = append(f.Annotations, a)

	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Closed = true

	return nil
}
