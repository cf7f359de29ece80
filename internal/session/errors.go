package session

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("session_invalid_config")

	// Authentication Errors
	ErrAuthenticationFailed = errors.ErrorCode("session_authentication_failed")
	ErrNotAuthenticated     = errors.ErrorCode("session_not_authenticated")

	// Transport Errors
	ErrRequestTimeout = errors.ErrorCode("session_request_timeout")
	ErrTransport      = errors.ErrorCode("session_transport_failed")
)
