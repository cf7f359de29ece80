package collector

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("collector_invalid_config")

	// Recorded per-field on the snapshot, never returned to the caller.
	ErrPartialCollection = errors.ErrorCode("collector_partial_failure")

	// Returned only when no subsystem fetch could start at all.
	ErrCycleFailed = errors.ErrorCode("collector_cycle_failed")
)
