// Package tracker turns a repeatedly-observed boolean signal into discrete
// state-transition annotations. Time is always injectable via time.Time
// parameters; the package performs no I/O of its own beyond the annotation
// sink it is given.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/logger"
)

// State represents the logical state of the tracked signal.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Tracker remembers the last observed value of one named boolean signal and
// emits exactly one annotation per transition. The initial state is unknown,
// so the first observation itself counts as a transition and emits.
type Tracker struct {
	signal string
	sink   annotation.Writer

	mu   sync.Mutex
	last *bool
}

func New(signal string, sink annotation.Writer) *Tracker {
	return &Tracker{
		signal: signal,
		sink:   sink,
	}
}

// Check compares value against the last recorded observation. Re-observing an
// unchanged state is an idempotent no-op; a change emits one annotation and
// updates the recorded value. The recorded value advances even when the sink
// fails, so a flaky sink cannot duplicate transitions.
func (t *Tracker) Check(ctx context.Context, value bool, timestamp time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil && *t.last == value {
		return
	}

	first := t.last == nil
	t.last = &value

	to := stateOf(value)

	a := annotation.Annotation{
		Category: annotation.CategoryStateChange,
		Title:    fmt.Sprintf("%s %s", t.signal, to),
		StartsAt: timestamp,
		Metadata: map[string]string{
			"signal": t.signal,
			"to":     string(to),
		},
	}

	if first {
		a.Description = fmt.Sprintf("%s observed %s", t.signal, to)
	} else {
		from := stateOf(!value)
		a.Description = fmt.Sprintf("%s changed from %s to %s", t.signal, from, to)
		a.Metadata["from"] = string(from)
	}

	if err := t.sink.Add(ctx, a); err != nil {
		logger.Warn().
			Err(err).
			Str("signal", t.signal).
			Msg("Failed to record state-change annotation")
	}
}

// Current returns the last recorded state; ok is false before the first
// observation.
func (t *Tracker) Current() (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last == nil {
		return "", false
	}

	return stateOf(*t.last), true
}

func stateOf(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}
