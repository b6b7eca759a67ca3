// Package apperr defines the error kinds surfaced by the repositories and
// services. Every error returned from a service operation wraps exactly one
// of the sentinels below; callers classify with errors.Is or KindOf.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed or missing input. It never reaches the store.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates the target record is missing or soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference indicates a foreign key that does not resolve to an active row.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrAuthentication indicates a credential mismatch.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrStore wraps adapter-level failures (connectivity, timeouts, unclassified constraints).
	ErrStore = errors.New("store failure")
)

// Kind names an error category.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindValidation       Kind = "validation"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindInvalidReference Kind = "invalid_reference"
	KindAuthentication   Kind = "authentication"
	KindStore            Kind = "store"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrValidation, KindValidation},
	{ErrConflict, KindConflict},
	{ErrNotFound, KindNotFound},
	{ErrInvalidReference, KindInvalidReference},
	{ErrAuthentication, KindAuthentication},
	{ErrStore, KindStore},
}

// KindOf returns the kind of err, or KindUnknown when err wraps none of the sentinels.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// Validation builds an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflict builds an ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotFound builds an ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidReference builds an ErrInvalidReference with a formatted message.
func InvalidReference(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, fmt.Sprintf(format, args...))
}

// Store wraps err as an ErrStore, keeping the original error in the chain.
// Errors that already carry a kind are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
