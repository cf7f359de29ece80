package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

func TestFormatSnapshot(t *testing.T) {
	ts := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	snapshot := telemetry.Snapshot{
		Timestamp: ts,
		Fields: telemetry.Fields{
			WaterTemperature: telemetry.Float(78.5),
			PumpRunning:      telemetry.Bool(true),
		},
		Errors: map[string]string{"chlorinator": "request timed out"},
	}

	payload, err := FormatSnapshot(snapshot)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "2026-08-23T12:00:00Z", decoded["timestamp"])
	assert.Equal(t, 78.5, decoded["water_temperature"])
	assert.Equal(t, true, decoded["pump_running"])
	assert.NotContains(t, decoded, "salt_ppm") // nil fields omitted

	errs, ok := decoded["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "request timed out", errs["chlorinator"])
}

func TestFormatAnnotation(t *testing.T) {
	a := annotation.Annotation{
		Category: annotation.CategoryStateChange,
		Title:    "Filter pump ON",
		StartsAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Metadata: map[string]string{"from": "OFF", "to": "ON"},
	}

	payload, err := FormatAnnotation(a)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "state_change", decoded["category"])
	assert.Equal(t, "Filter pump ON", decoded["title"])
	assert.Equal(t, "2026-08-23T12:00:00Z", decoded["timestamp"])
}

type failingWriter struct{}

func (failingWriter) Add(context.Context, annotation.Annotation) error {
	return assert.AnError
}

type memoryWriter struct {
	added []annotation.Annotation
}

func (w *memoryWriter) Add(_ context.Context, a annotation.Annotation) error {
	w.added = append(w.added, a)
	return nil
}

func TestAnnotationSinkStoresAndPublishes(t *testing.T) {
	store := &memoryWriter{}
	pub := NewFakePublisher()
	sink := AnnotationSink(store, pub)

	a := annotation.Annotation{Category: "state_change", Title: "Filter pump ON", StartsAt: time.Now()}
	require.NoError(t, sink.Add(context.Background(), a))

	assert.Len(t, store.added, 1)
	assert.Len(t, pub.Annotations, 1)
}

func TestAnnotationSinkPublishFailureIsNonFatal(t *testing.T) {
	store := &memoryWriter{}
	pub := NewFakePublisher()
	pub.PublishError = assert.AnError
	sink := AnnotationSink(store, pub)

	a := annotation.Annotation{Category: "state_change", Title: "Filter pump ON", StartsAt: time.Now()}
	require.NoError(t, sink.Add(context.Background(), a))

	assert.Len(t, store.added, 1)
	assert.Empty(t, pub.Annotations)
}

func TestAnnotationSinkStoreFailurePropagates(t *testing.T) {
	pub := NewFakePublisher()
	sink := AnnotationSink(failingWriter{}, pub)

	a := annotation.Annotation{Category: "state_change", Title: "Filter pump ON", StartsAt: time.Now()}
	require.Error(t, sink.Add(context.Background(), a))

	// Nothing published when the durable write fails.
	assert.Empty(t, pub.Annotations)
}
