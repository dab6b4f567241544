package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNoFileProvided       = errors.New("no file provided")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrAllEnginesFailed     = errors.New("all recognition engines failed")
	ErrClassificationFailed = errors.New("document classification failed")
	ErrExtractionFailed     = errors.New("field extraction failed")
	ErrPipelineTimeout      = errors.New("ingestion pipeline timed out")
	ErrInvalidLifeDomain    = errors.New("invalid life domain")
	ErrUploadFailed         = errors.New("file upload to storage failed")
)
