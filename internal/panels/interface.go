package panels

import (
	"context"

	"codeberg.org/mutker/poolwatch/internal/session"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

// Client is the authenticated-request surface a panel needs. Satisfied by
// *session.Session.
type Client interface {
	Request(ctx context.Context, path string, opts *session.RequestOptions) ([]byte, error)
}

// Panel is one independently-fetched page of the remote control system. Each
// panel reduces whatever it extracts down to the fixed telemetry field set;
// panels without numeric content (lighting, schedules) return empty Fields
// and exist for availability monitoring.
type Panel interface {
	Name() string
	Collect(ctx context.Context, client Client) (telemetry.Fields, error)
}
