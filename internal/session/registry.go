package session

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/logger"
)

// Registry is the single place of truth mapping a session key to exactly one
// Session. Lookups never return an expired session; a periodic sweep removes
// expired entries so the map stays bounded by the set of active keys.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config) (*Registry, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}, nil
}

// Get returns the session for key, transparently replacing a missing or
// expired one with a fresh unauthenticated session.
func (r *Registry) Get(key string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[key]; ok && !existing.IsExpired() {
		return existing, nil
	}

	fresh, err := New(r.cfg, key)
	if err != nil {
		return nil, err
	}
	r.sessions[key] = fresh

	logger.Debug().Str("session", key).Msg("Created session")

	return fresh, nil
}

// Remove discards the session for key. Used for explicit logout.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, key)
}

// Keys lists the currently registered session keys. Diagnostics only.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}

	return keys
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// StartSweep launches the background sweep goroutine. It stops when ctx is
// cancelled. Requests already in flight on a swept session are unaffected;
// only subsequent lookups see the removal.
func (r *Registry) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Sweep removes every expired session from the registry.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, key)
			logger.Info().Str("session", key).Msg("Swept expired session")
		}
	}
}
