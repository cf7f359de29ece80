package telemetry

import (
	"sort"
	"sync"
	"time"
)

// ringBuffer keeps the most recent points in ascending timestamp order with a
// fixed capacity. Writes with an identical timestamp overwrite the existing
// point; on overflow the globally oldest timestamp is evicted regardless of
// arrival order.
type ringBuffer struct {
	mu       sync.RWMutex
	points   []Point
	capacity int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		points:   make([]Point, 0, capacity),
		capacity: capacity,
	}
}

func (b *ringBuffer) Insert(point Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := sort.Search(len(b.points), func(i int) bool {
		return !b.points[i].Timestamp.Before(point.Timestamp)
	})

	if i < len(b.points) && b.points[i].Timestamp.Equal(point.Timestamp) {
		b.points[i] = point
		return
	}

	b.points = append(b.points, Point{})
	copy(b.points[i+1:], b.points[i:])
	b.points[i] = point

	if len(b.points) > b.capacity {
		b.points = b.points[1:]
	}
}

// Since returns points with timestamp >= since in ascending order, capped at
// limit when limit > 0.
func (b *ringBuffer) Since(since time.Time, limit int) []Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := sort.Search(len(b.points), func(i int) bool {
		return !b.points[i].Timestamp.Before(since)
	})

	matched := b.points[i:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]Point, len(matched))
	copy(result, matched)

	return result
}

func (b *ringBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.points)
}
