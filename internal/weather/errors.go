package weather

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	ErrProviderRequest  = errors.ErrorCode("weather_provider_request_failed")
	ErrProviderResponse = errors.ErrorCode("weather_provider_bad_response")
)
