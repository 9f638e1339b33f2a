package information

import "errors"

// Domain-specific errors for the information store.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when no record exists for a device name.
	// Callers must treat this differently from infrastructure failures.
	ErrNotFound = errors.New("information: record not found")

	// ErrUnknownField is returned when an update names a field outside
	// the allow-list. The whole update is rejected; no fields are applied.
	ErrUnknownField = errors.New("information: unknown field")
)
