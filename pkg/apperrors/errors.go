package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidPageSize     = errors.New("page size must be greater than zero")
	ErrNoToken             = errors.New("no auth token stored")
	ErrLoaderClosed        = errors.New("loader closed")
	ErrInvalidPathSegment  = errors.New("invalid path segment")
)
