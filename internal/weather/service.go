package weather

import (
	"context"

	"codeberg.org/mutker/poolwatch/internal/logger"
)

// Service queries the primary provider and falls back to the static table
// when it fails. The fallback path itself never errors, so a Service always
// produces a reading.
type Service struct {
	primary  Provider
	fallback Provider
}

func NewService(primary Provider) *Service {
	return &Service{
		primary:  primary,
		fallback: StaticFallback{},
	}
}

// NewServiceWithFallback overrides the fallback provider. Used in tests.
func NewServiceWithFallback(primary, fallback Provider) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
	}
}

func (s *Service) Name() string {
	return s.primary.Name()
}

func (s *Service) Current(ctx context.Context) (Reading, error) {
	reading, err := s.primary.Current(ctx)
	if err == nil {
		return reading, nil
	}

	logger.Warn().
		Err(err).
		Str("provider", s.primary.Name()).
		Msg("Weather provider failed, using fallback normals")

	return s.fallback.Current(ctx)
}
