package telemetry

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Write Errors
	ErrInvalidPoint = errors.ErrorCode("telemetry_invalid_point")

	// Query Errors
	ErrUnknownField = errors.ErrorCode("telemetry_unknown_field")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageInit   = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageClose  = errors.ErrorCode("telemetry_storage_close_failed")
)
