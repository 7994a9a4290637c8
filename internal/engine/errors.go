package engine

import "errors"

// All engine failures are returned as values wrapping one of these
// sentinels; nothing is retried and the demand snapshot is never mutated.
var (
	// ErrValidation marks a missing required field in the supplied
	// evidence or selection.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition marks an action that is not legal from the
	// demand's current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrIntegrity marks a selection referencing a declined or
	// nonexistent proposal or item.
	ErrIntegrity = errors.New("integrity violation")
)
