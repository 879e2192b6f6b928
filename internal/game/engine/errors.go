// Package engine defines the error taxonomy shared by every rules resolver.
//
// Resolvers are all-or-nothing: on error the caller must discard the returned
// snapshots and persist nothing. Every error a resolver returns wraps exactly
// one of the three root sentinels so callers can classify with errors.Is.
package engine

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed or out-of-range input. The caller can recover
// by correcting the request.
var ErrValidation = errors.New("validation failed")

// ErrStateConflict marks an operation that is inconsistent with the current
// persisted state (already battling, insufficient gold, no active session).
// The caller can recover by re-fetching state.
var ErrStateConflict = errors.New("state conflict")

// ErrConfig marks a missing or invalid tunable. It is a server-side fault and
// must not be retried automatically.
var ErrConfig = errors.New("invalid configuration")

// Validationf returns a formatted error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf returns a formatted error wrapping ErrStateConflict.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStateConflict)...)
}

// Configf returns a formatted error wrapping ErrConfig.
func Configf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConfig)...)
}
