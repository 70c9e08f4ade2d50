package core

import "errors"

var (
	// ErrSourceMissing is returned by a Source when a dataset file does not
	// exist. The stage is skipped; the run continues.
	ErrSourceMissing = errors.New("source not found")

	// ErrEncoding is returned when a file decodes neither as UTF-8 nor as
	// the latin-1 fallback.
	ErrEncoding = errors.New("encoding error")

	// ErrInvalidCSV is returned when a file cannot be parsed as CSV.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrEmptySource is returned for a file without a header row.
	ErrEmptySource = errors.New("empty file")

	// ErrFileTooLarge is returned when a file exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrKindSealed is returned when recording identifiers for a kind whose
	// producing stage already finished.
	ErrKindSealed = errors.New("identifier kind sealed")

	// ErrRunInProgress is returned when a run is requested while another
	// one is active.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrRunNotFound is returned when looking up an unknown run id.
	ErrRunNotFound = errors.New("run not found")
)
