package catalog

import "errors"

// Sentinel errors distinguished by the error kinds in spec §7. Callers use
// errors.Is against these; the HTTP layer maps them to status codes at a
// single boundary (see internal/httpapi).
var (
	// ErrNotFound indicates an unknown UUID or a folder not yet indexed
	// when the caller requested a pure read.
	ErrNotFound = errors.New("catalog: not found")

	// ErrAlreadyExists indicates a duplicate source folder add.
	ErrAlreadyExists = errors.New("catalog: already exists")

	// ErrInvalidInput indicates a malformed path, empty UUID, or bad
	// query parameter.
	ErrInvalidInput = errors.New("catalog: invalid input")

	// ErrIO indicates a filesystem failure encountered while fingerprinting
	// or scanning a file (permission denied, disappeared mid-scan, and so
	// on). Distinguished from ErrDatabase so the HTTP layer can tell a
	// transient filesystem hiccup from a store-level failure.
	ErrIO = errors.New("catalog: io error")

	// ErrDatabase indicates a failure in the underlying SQLite connection
	// that isn't better described by one of the above (corruption, a
	// migration failure on open, and so on).
	ErrDatabase = errors.New("catalog: database error")

	// ErrBusy indicates a full rebuild was requested for a source folder
	// that already has one in flight.
	ErrBusy = errors.New("catalog: busy")
)
