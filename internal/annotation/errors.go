package annotation

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	ErrInvalidAnnotation = errors.ErrorCode("annotation_invalid")
	ErrStorageAccess     = errors.ErrorCode("annotation_storage_access_failed")
	ErrStorageInit       = errors.ErrorCode("annotation_storage_init_failed")
	ErrStorageClose      = errors.ErrorCode("annotation_storage_close_failed")
)
