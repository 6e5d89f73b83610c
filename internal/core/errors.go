package core

import "errors"

// Sentinel errors returned by the profiling and checking operations.
// Callers match them with errors.Is; messages are wrapped with context.
var (
	// ErrColumnNotFound is returned when a named column is absent from a data file.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnnamedColumn is returned for blank or placeholder ("Unnamed: 3") headers.
	ErrUnnamedColumn = errors.New("column has no name")

	// ErrUnsupportedEncoding is returned for a character encoding the reader cannot decode.
	ErrUnsupportedEncoding = errors.New("unsupported character encoding")

	// ErrInvalidCSV is returned when a data file cannot be tokenised.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrDocumentNotFound is returned when no metadata document has been stored.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDataFileNotFound is returned when a named data file has not been stored.
	ErrDataFileNotFound = errors.New("data file not found")

	// ErrInvalidName is returned for document or file names that would escape
	// the storage directory.
	ErrInvalidName = errors.New("invalid name")
)
