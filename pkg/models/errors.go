package models

import (
	"errors"
	"fmt"
)

// Outcome taxonomy. Every error returned by the engine wraps exactly one of
// these, so callers can branch with errors.Is regardless of the specific cause.
var (
	// ErrAuthenticationFailed covers every credential failure. It never
	// says whether the name or the password was wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrPermissionDenied is returned when a write is rejected by policy.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvariantViolation is returned when an operation would break a
	// data invariant (ownerless project, dangling reference, bad level).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrConflict is returned when a unique name is already taken.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned by reads of rows that do not exist or are
	// not visible to the caller. The two cases are indistinguishable.
	ErrNotFound = errors.New("not found")
)

// Specific errors. Each wraps one taxonomy sentinel.
var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateUser     = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrRecordNotFound    = fmt.Errorf("record %w", ErrNotFound)
	ErrMessageNotFound   = fmt.Errorf("message %w", ErrNotFound)
	ErrGrantNotFound     = fmt.Errorf("grant %w", ErrNotFound)
	ErrPrincipalNotFound = fmt.Errorf("principal %w", ErrNotFound)

	ErrDuplicatePrincipal = fmt.Errorf("principal already exists: %w", ErrConflict)

	ErrInvalidLevel         = fmt.Errorf("invalid privilege level: %w", ErrInvariantViolation)
	ErrLastOwner            = fmt.Errorf("project must keep at least one owner: %w", ErrInvariantViolation)
	ErrNoSuchGrant          = fmt.Errorf("no grant to revoke: %w", ErrInvariantViolation)
	ErrUnknownGrantee       = fmt.Errorf("grantee does not exist or is disabled: %w", ErrInvariantViolation)
	ErrUnknownRecipient     = fmt.Errorf("recipient does not exist: %w", ErrInvariantViolation)
	ErrInvalidPrincipalName = fmt.Errorf("invalid principal name: %w", ErrInvariantViolation)
	ErrInvalidCapability    = fmt.Errorf("unknown capability: %w", ErrInvariantViolation)
	ErrEmptyName            = fmt.Errorf("name is required: %w", ErrInvariantViolation)
)

// DeniedError describes a policy denial. It unwraps to ErrPermissionDenied.
type DeniedError struct {
	Operation  string
	Collection string
	Reason     string
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("permission denied: %s on %s", e.Operation, e.Collection)
	}
	return fmt.Sprintf("permission denied: %s on %s: %s", e.Operation, e.Collection, e.Reason)
}

func (e *DeniedError) Unwrap() error { return ErrPermissionDenied }

// Deny builds a DeniedError.
func Deny(operation, collection, reason string) error {
	return &DeniedError{Operation: operation, Collection: collection, Reason: reason}
}

// DenialReason returns the reason of a DeniedError in err's chain, or "".
func DenialReason(err error) string {
	var de *DeniedError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
