package domain

import (
	"errors"
	"fmt"
)

// Error kinds are the stable, client-visible classification of a failure.
const (
	KindUnauthenticated   = "unauthenticated"
	KindForbidden         = "forbidden"
	KindNotFound          = "not_found"
	KindConflict          = "conflict"
	KindInvalidTransition = "invalid_transition"
	KindValidation        = "validation"
	KindConfiguration     = "configuration"
	KindInternal          = "internal"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("access forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrConfiguration     = errors.New("configuration error")
)

// Authentication failures.
var (
	ErrTokenMissing       = fmt.Errorf("%w: missing token", ErrUnauthenticated)
	ErrTokenInvalid       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrAccountInactive    = fmt.Errorf("%w: account is deactivated", ErrUnauthenticated)
)

var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)
	ErrBillNotFound    = fmt.Errorf("bill %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
)

var (
	ErrAccountExists      = fmt.Errorf("%w: account already exists", ErrValidation)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	ErrTokenUnusable      = fmt.Errorf("%w: token is invalid or has expired", ErrValidation)
	ErrNotOwner           = fmt.Errorf("%w: only the creator or an administrator may do this", ErrForbidden)
	ErrStaleStatus        = fmt.Errorf("%w: status was changed concurrently", ErrConflict)
	ErrDuplicateNumber    = fmt.Errorf("%w: document number already issued", ErrConflict)
	ErrRequestInProgress  = fmt.Errorf("%w: a request with this idempotency key is in progress", ErrConflict)
	ErrInvoiceLocked      = fmt.Errorf("%w: invoice can no longer be modified", ErrConflict)
	ErrInvoiceLinked      = fmt.Errorf("%w: invoice belongs to an order", ErrConflict)
	ErrBillLocked         = fmt.Errorf("%w: bill can no longer be modified", ErrConflict)
)

// Kind classifies err into one of the Kind* constants. Errors outside the
// taxonomy are reported as KindInternal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}

// Invalid wraps a message as a validation failure.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
