package fetcher

import "errors"

// Sentinel errors for every way a fetch can fail. Callers discriminate with
// errors.Is; the wrapped message keeps the original cause for the log.
var (
	// ErrInvalidInput means the year or BR number failed validation. Raised
	// before any filesystem or network work.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFilesystem means the local directory layout could not be created.
	ErrFilesystem = errors.New("filesystem error")

	// ErrNotFound means the server has no archive for this (year, BR).
	ErrNotFound = errors.New("dataset not found")

	// ErrTimeout means the download exceeded the client timeout.
	ErrTimeout = errors.New("server timeout")

	// ErrConnection means a transport-level failure before any HTTP status.
	ErrConnection = errors.New("connection failed")

	// ErrNetwork means a non-2xx, non-404 HTTP status.
	ErrNetwork = errors.New("network error")

	// ErrInvalidFormat means the response did not declare a zip content type.
	ErrInvalidFormat = errors.New("response is not a zip archive")

	// ErrIO means the downloaded bytes could not be written to disk.
	ErrIO = errors.New("failed to save file")

	// ErrCorruptArchive means the zip could not be opened or has no entries.
	// The zip file is left on disk for inspection.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrNoDataFound means the archive opened fine but contains no CSV.
	ErrNoDataFound = errors.New("no CSV found in archive")

	// ErrParse means the CSV could not be decoded at all. Individual bad
	// rows are skipped with a warning instead.
	ErrParse = errors.New("failed to parse CSV")

	// ErrEncoding means the Latin-1 text could not be decoded.
	ErrEncoding = errors.New("failed to decode text encoding")
)
