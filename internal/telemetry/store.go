package telemetry

import (
	"context"
	"math"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"codeberg.org/mutker/poolwatch/internal/logger"
)

const durableWriteTimeout = 5 * time.Second

// Store accepts point writes and serves range queries and statistics. Every
// write lands synchronously in a bounded in-memory buffer and is forwarded
// best-effort to the durable repository; a repository failure never rolls
// back the buffer write. Reads prefer the repository (it holds longer
// history) and fall back to the buffer when it is unreachable.
type Store struct {
	buffer *ringBuffer
	repo   Repository

	wg sync.WaitGroup

	mu     sync.RWMutex
	latest *Point
}

func NewStore(cfg Config) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err // Already wrapped with appropriate error
	}

	return NewStoreWithRepository(repo, cfg.Capacity), nil
}

// NewStoreWithRepository wires an explicit repository. Used by NewStore and
// by tests that substitute a fake backend.
func NewStoreWithRepository(repo Repository, capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Store{
		buffer: newRingBuffer(capacity),
		repo:   repo,
	}
}

// Write validates and stores one point. The in-memory insert is synchronous;
// the durable write happens on a background goroutine and its failure is only
// logged.
func (s *Store) Write(ctx context.Context, point Point) error {
	errFactory := errors.New()

	if point.Timestamp.IsZero() {
		return errFactory.New(ErrInvalidPoint)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(errors.ErrTimeout, ctx.Err())
	default:
	}

	s.buffer.Insert(point)

	s.mu.Lock()
	s.latest = &point
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), durableWriteTimeout)
		defer cancel()

		if err := s.repo.Store(ctx, &point); err != nil {
			logger.Warn().
				Err(err).
				Time("timestamp", point.Timestamp).
				Msg("Durable telemetry write failed, point retained in buffer only")
		}
	}()

	return nil
}

// QueryRange returns points with timestamp >= now - hours in ascending order,
// capped at limit when limit > 0.
func (s *Store) QueryRange(ctx context.Context, hours int, limit int) ([]Point, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	points, err := s.repo.QueryRange(ctx, since, limit)
	if err != nil {
		logger.Debug().Err(err).Msg("Durable backend unavailable, serving range from buffer")
		return s.buffer.Since(since, limit), nil
	}

	return points, nil
}

// Stats returns {min, max, avg} for one numeric field over the window,
// ignoring null values. All-null fields yield an all-null result. Values are
// rounded to one decimal place for display stability.
func (s *Store) Stats(ctx context.Context, field string, hours int) (Stats, error) {
	errFactory := errors.New()

	accessor, ok := numericFields[field]
	if !ok {
		return Stats{}, errFactory.WithData(ErrUnknownField, field)
	}

	points, err := s.QueryRange(ctx, hours, 0)
	if err != nil {
		return Stats{}, err
	}

	var (
		minVal, maxVal, sum float64
		count               int
	)
	for i := range points {
		v := accessor(&points[i].Fields)
		if v == nil {
			continue
		}
		if count == 0 || *v < minVal {
			minVal = *v
		}
		if count == 0 || *v > maxVal {
			maxVal = *v
		}
		sum += *v
		count++
	}

	if count == 0 {
		return Stats{}, nil
	}

	return Stats{
		Min: Float(round1(minVal)),
		Max: Float(round1(maxVal)),
		Avg: Float(round1(sum / float64(count))),
	}, nil
}

// Latest returns the most recently written point, independent of any query
// window.
func (s *Store) Latest() (Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Point{}, false
	}

	return *s.latest, true
}

// BufferLen reports the number of points held in memory.
func (s *Store) BufferLen() int {
	return s.buffer.Len()
}

// Close waits for in-flight durable writes and closes the repository.
func (s *Store) Close() error {
	s.wg.Wait()

	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
