package collector

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"codeberg.org/mutker/poolwatch/internal/logger"
	"codeberg.org/mutker/poolwatch/internal/panels"
	"codeberg.org/mutker/poolwatch/internal/publish"
	"codeberg.org/mutker/poolwatch/internal/session"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
	"codeberg.org/mutker/poolwatch/internal/tracker"
	"codeberg.org/mutker/poolwatch/internal/weather"
)

const weatherSubsystem = "weather"

type Config struct {
	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{CacheTTL: 15 * time.Second}
}

// WeatherSource is the independently-sourced ambient reading of a poll cycle.
// Satisfied by *weather.Service.
type WeatherSource interface {
	Current(ctx context.Context) (weather.Reading, error)
}

// Collector produces one consistent snapshot per poll cycle from N
// independent subsystem fetches, tolerating per-subsystem failure. The
// remote panels are independently flaky: a single panel's failure must not
// blank the rest of the snapshot.
type Collector struct {
	cfg     Config
	panels  []panels.Panel
	weather WeatherSource
	store   *telemetry.Store
	pump    *tracker.Tracker
	cache   *snapshotCache

	publisher publish.Publisher

	mu     sync.RWMutex
	latest *telemetry.Snapshot
}

func New(cfg Config, panelSet []panels.Panel, weatherSource WeatherSource,
	store *telemetry.Store, pump *tracker.Tracker,
) (*Collector, error) {
	if len(panelSet) == 0 || weatherSource == nil || store == nil || pump == nil {
		return nil, errors.New().New(ErrInvalidConfig)
	}

	return &Collector{
		cfg:     cfg,
		panels:  panelSet,
		weather: weatherSource,
		store:   store,
		pump:    pump,
		cache:   newSnapshotCache(cfg.CacheTTL),
	}, nil
}

// SetPublisher attaches an optional publisher notified after every fresh
// (non-cached) cycle. Publish failures are logged, never fatal.
func (c *Collector) SetPublisher(p publish.Publisher) {
	c.publisher = p
}

type fetchResult struct {
	name   string
	fields telemetry.Fields
	err    error
}

// Collect runs one poll cycle for the given session. A non-expired cache
// entry short-circuits the whole cycle: no network calls and no re-write to
// the store. On a miss all subsystem fetches run concurrently and the cycle
// waits for every one to settle before merging.
func (c *Collector) Collect(ctx context.Context, client panels.Client, key string) (telemetry.Snapshot, error) {
	if cached, ok := c.cache.get(key); ok {
		logger.Debug().Str("session", key).Msg("Serving cached snapshot")
		return cached, nil
	}

	results := make([]fetchResult, len(c.panels)+1)

	var wg sync.WaitGroup
	for i, panel := range c.panels {
		wg.Add(1)
		go func(i int, panel panels.Panel) {
			defer wg.Done()
			fields, err := panel.Collect(ctx, client)
			results[i] = fetchResult{name: panel.Name(), fields: fields, err: err}
		}(i, panel)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		reading, err := c.weather.Current(ctx)
		result := fetchResult{name: weatherSubsystem, err: err}
		if err == nil {
			result.fields = telemetry.Fields{
				AmbientTemperature: telemetry.Float(reading.TemperatureF),
				AmbientHumidity:    telemetry.Float(reading.Humidity),
			}
		}
		results[len(c.panels)] = result
	}()

	wg.Wait()

	snapshot := telemetry.Snapshot{Timestamp: time.Now().UTC()}

	panelFailures := 0
	for _, result := range results {
		if result.err != nil {
			if snapshot.Errors == nil {
				snapshot.Errors = make(map[string]string)
			}
			snapshot.Errors[result.name] = result.err.Error()
			if result.name != weatherSubsystem {
				panelFailures++
			}
			logger.Warn().
				Str("error_code", string(errors.CodeOf(result.err))).
				Str("subsystem", result.name).
				Err(result.err).
				Msg("Subsystem fetch failed")
			continue
		}
		snapshot.Fields.Merge(result.fields)
	}

	// A cycle on an unauthenticated session fails before any panel produces
	// data; that is the one failure mode that propagates to the caller.
	if panelFailures == len(c.panels) && c.allNotAuthenticated(results) {
		return telemetry.Snapshot{}, errors.New().Wrap(ErrCycleFailed,
			errors.New().New(session.ErrNotAuthenticated))
	}

	c.cache.set(key, snapshot)

	if err := c.store.Write(ctx, snapshot.Point()); err != nil {
		logger.Warn().Err(err).Msg("Snapshot point write failed")
	}

	if snapshot.PumpRunning != nil {
		c.pump.Check(ctx, *snapshot.PumpRunning, snapshot.Timestamp)
	}

	c.mu.Lock()
	c.latest = &snapshot
	c.mu.Unlock()

	if c.publisher != nil {
		if err := c.publisher.PublishSnapshot(snapshot); err != nil {
			logger.Warn().Err(err).Msg("Snapshot publish failed")
		}
	}

	if len(snapshot.Errors) > 0 {
		logger.Info().
			Str("error_code", string(ErrPartialCollection)).
			Int("failed_subsystems", len(snapshot.Errors)).
			Msg("Collected partial snapshot")
	}

	return snapshot, nil
}

// Latest returns the most recent snapshot regardless of cache expiry or
// storage-backend outages. ok is false before the first completed cycle.
func (c *Collector) Latest() (telemetry.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.latest == nil {
		return telemetry.Snapshot{}, false
	}

	return *c.latest, true
}

func (*Collector) allNotAuthenticated(results []fetchResult) bool {
	for _, result := range results {
		if result.name == weatherSubsystem {
			continue
		}
		if !errors.HasCode(result.err, session.ErrNotAuthenticated) {
			return false
		}
	}

	return true
}
