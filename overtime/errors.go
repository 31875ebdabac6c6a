/*
errors.go - Centralized error types for the overtime engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Input/format errors    - malformed time or date strings
  2. Authorization errors   - wrong role or wrong team on a decision
  3. State errors           - acting on a non-Pending claim, missing remarks
  4. Quota errors           - approval-time hard block

  Business-rule violations found during validation (date out of window,
  session too long, duplicate overlap, quota block at submission) are DATA:
  they travel as ValidationResult.Errors strings and never cross the
  validator boundary as Go errors.

USAGE:
  Callers can classify with errors.Is():

    if errors.Is(err, overtime.ErrInvalidState) { ... 409 ... }
*/
package overtime

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStaffNotFound is returned when the staff directory has no record
	// for the given identifier.
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrClaimNotFound is returned when a claim id resolves to nothing.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrInvalidState is returned on a transition from a state that does
	// not permit it (e.g. approving an already-approved claim).
	ErrInvalidState = errors.New("claim is not in a valid state for this action")

	// ErrRemarksRequired is returned when a rejection carries no remarks.
	ErrRemarksRequired = errors.New("remarks are required to reject a claim")

	// ErrNotAuthorized is returned when the actor lacks the team-leader
	// role or leads a different team than the claim's.
	ErrNotAuthorized = errors.New("actor is not authorized to decide this claim")

	// ErrQuotaExceeded is returned when an approval would push the staff
	// member's monthly total past the hard cap.
	ErrQuotaExceeded = errors.New("monthly overtime quota exceeded")

	// ErrSessionTooLong is returned when a single session exceeds the cap.
	ErrSessionTooLong = errors.New("session exceeds maximum hours")

	// ErrZeroDuration is returned when a session has no positive duration.
	ErrZeroDuration = errors.New("session has zero duration")

	// ErrBadFormat is returned for malformed time or date input.
	ErrBadFormat = errors.New("malformed input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FormatError reports a field that failed to parse.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return ErrBadFormat }

// SessionTooLongError reports a session over the per-session cap.
type SessionTooLongError struct {
	Hours decimal.Decimal
	Max   decimal.Decimal
}

func (e *SessionTooLongError) Error() string {
	return fmt.Sprintf("overtime session of %s hours exceeds the %s hour maximum",
		e.Hours, e.Max)
}

func (e *SessionTooLongError) Unwrap() error { return ErrSessionTooLong }

// InvalidStateError reports an illegal lifecycle transition.
type InvalidStateError struct {
	ClaimID string
	Status  ClaimStatus
	Action  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s claim %s: status is %s, must be %s",
		e.Action, e.ClaimID, e.Status, StatusPending)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// QuotaExceededError reports an approval-time hard block. The claim stays
// Pending when this is returned.
type QuotaExceededError struct {
	StaffEmail string
	Month      string
	Projected  decimal.Decimal
	Max        decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("approving would bring %s to %s hours for %s, over the %s hour limit",
		e.StaffEmail, e.Projected, e.Month, e.Max)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBadFormat) ||
		errors.Is(err, ErrSessionTooLong) ||
		errors.Is(err, ErrZeroDuration) ||
		errors.Is(err, ErrRemarksRequired)
}

// IsStateError reports whether the error is a lifecycle/quota conflict.
func IsStateError(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrQuotaExceeded)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStaffNotFound) || errors.Is(err, ErrClaimNotFound)
}
