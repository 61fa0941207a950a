package nc

import "errors"

var (
	// ErrValidation marks missing or invalid caller input. Specific field
	// errors wrap it so transports can map the whole family to one code.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced record id that does not exist.
	ErrNotFound = errors.New("non-conformance not found")
)
