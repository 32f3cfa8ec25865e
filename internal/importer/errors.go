package importer

import "errors"

// Decode failures abort the whole run; there is no partial decode.
// Row-scoped problems are never errors, they are ValidationIssues or
// outcome entries.
var (
	ErrFileTooLarge      = errors.New("file exceeds maximum import size")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedFile     = errors.New("file could not be parsed")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrSessionNotFound   = errors.New("upload session not found")
)
