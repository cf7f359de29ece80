package annotation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "annotations.db"))
	require.NoError(t, err)

	return store
}

func TestAddAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	a := Annotation{
		Category:    CategoryStateChange,
		Title:       "Filter pump ON",
		Description: "Filter pump changed from OFF to ON",
		StartsAt:    now,
		Metadata:    map[string]string{"from": "OFF", "to": "ON"},
	}
	require.NoError(t, store.Add(ctx, a))

	list, err := store.QueryRange(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.NotEmpty(t, got.ID) // generated
	assert.Equal(t, "Filter pump ON", got.Title)
	assert.Equal(t, now.Unix(), got.StartsAt.Unix())
	assert.Equal(t, map[string]string{"from": "OFF", "to": "ON"}, got.Metadata)
	assert.Nil(t, got.EndsAt)
}

func TestAddValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Add(ctx, Annotation{Category: "x", Title: "y"})) // no timestamp
	assert.Error(t, store.Add(ctx, Annotation{StartsAt: time.Now(), Title: "y"}))
	assert.Error(t, store.Add(ctx, Annotation{StartsAt: time.Now(), Category: "x"}))
}

func TestAddDeduplicatesByExternalID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	alert := Annotation{
		ExternalID: "nws-alert-42",
		Category:   CategoryWeatherAlert,
		Title:      "Excessive Heat Warning",
		StartsAt:   now,
	}
	require.NoError(t, store.Add(ctx, alert))

	// Re-ingesting the same alert is silently dropped.
	alert.Title = "Excessive Heat Warning (updated)"
	require.NoError(t, store.Add(ctx, alert))

	list, err := store.QueryRange(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Excessive Heat Warning", list[0].Title)
}

func TestAddWithoutExternalIDNeverDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	a := Annotation{Category: CategoryStateChange, Title: "Filter pump ON", StartsAt: now}
	require.NoError(t, store.Add(ctx, a))
	require.NoError(t, store.Add(ctx, a))

	list, err := store.QueryRange(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQueryRangeOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	pointEvent := Annotation{
		Category: CategoryStateChange,
		Title:    "point inside window",
		StartsAt: base,
	}
	require.NoError(t, store.Add(ctx, pointEvent))

	// Range event starting before the window but ending inside it.
	endsAt := base.Add(time.Hour)
	rangeEvent := Annotation{
		ExternalID: "alert-1",
		Category:   CategoryWeatherAlert,
		Title:      "spanning alert",
		StartsAt:   base.Add(-2 * time.Hour),
		EndsAt:     &endsAt,
	}
	require.NoError(t, store.Add(ctx, rangeEvent))

	outside := Annotation{
		Category: CategoryStateChange,
		Title:    "long before",
		StartsAt: base.Add(-48 * time.Hour),
	}
	require.NoError(t, store.Add(ctx, outside))

	list, err := store.QueryRange(ctx, base.Add(-time.Minute), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Ascending start order.
	assert.Equal(t, "spanning alert", list[0].Title)
	assert.Equal(t, "point inside window", list[1].Title)
	require.NotNil(t, list[0].EndsAt)
	assert.Equal(t, endsAt.Unix(), list[0].EndsAt.Unix())
}

func TestQueryRangeEmpty(t *testing.T) {
	store := newTestStore(t)

	list, err := store.QueryRange(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}
