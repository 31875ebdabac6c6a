/*
stores.go - Collaborator interfaces consumed by the engine

PURPOSE:
  The engine reads staff, claims, attendance, and holidays, and writes
  claims, summaries, notifications, and audit entries. Each of those
  collaborators is defined here as an interface; the engine specifies
  WHICH filters and writes it needs, never how the backing store executes
  them. Implementations live in store/memory (tests, dev) and store/sqlite
  (production).

BEST-EFFORT CONTRACT:
  Notifier and AuditLog are side channels. Their errors are logged by the
  engine and swallowed; a failed email or audit write never rolls back a
  state transition.
*/
package overtime

import (
	"context"
	"time"
)

// =============================================================================
// STAFF DIRECTORY - Read-only
// =============================================================================

type StaffDirectory interface {
	// GetStaff returns nil (no error) when the id is unknown.
	GetStaff(ctx context.Context, email string) (*StaffMember, error)

	// GetTeamMembers returns the active staff reporting to a leader.
	GetTeamMembers(ctx context.Context, leaderEmail string) ([]StaffMember, error)
}

// =============================================================================
// CLAIM STORE
// =============================================================================

// ClaimFilter narrows ListClaims. Zero-valued fields are ignored.
type ClaimFilter struct {
	StaffEmail    string
	Team          string
	Date          *Date  // exact calendar day
	Month         string // "YYYY-MM" on the OT date
	Status        ClaimStatus
	ExcludeStatus ClaimStatus
}

type ClaimStore interface {
	InsertClaim(ctx context.Context, c *OTClaim) error
	GetClaim(ctx context.Context, id string) (*OTClaim, error)
	ListClaims(ctx context.Context, f ClaimFilter) ([]OTClaim, error)

	// UpdateClaimStatus applies a decision. Only a Pending claim may be
	// decided: the write is conditional on the current status, so two
	// racing decisions cannot both succeed. A claim in any other state
	// yields an InvalidStateError, a missing one ErrClaimNotFound.
	UpdateClaimStatus(ctx context.Context, id string, status ClaimStatus, approver, remarks string, decidedAt time.Time) error

	// PromoteDraft rewrites a draft's computed snapshot and moves it to
	// Pending in one step.
	PromoteDraft(ctx context.Context, c *OTClaim) error
}

// =============================================================================
// ATTENDANCE STORE - Read-only
// =============================================================================

type AttendanceStore interface {
	// ListAttendance returns records for a staff member. When before is
	// non-zero, only records with a clock-out strictly before it; a zero
	// before lists everything, open shifts included.
	ListAttendance(ctx context.Context, staffEmail string, before time.Time) ([]AttendanceRecord, error)
}

// =============================================================================
// HOLIDAY CALENDAR - Static reference data
// =============================================================================

type HolidayCalendar interface {
	// IsHoliday matches by calendar-day equality; a miss is false, not an error.
	IsHoliday(ctx context.Context, d Date) (bool, error)

	// HolidayDetails returns nil on a miss.
	HolidayDetails(ctx context.Context, d Date) (*Holiday, error)
}

// =============================================================================
// SUMMARY STORE - One row per (staff, month), upsert semantics
// =============================================================================

type SummaryStore interface {
	GetSummary(ctx context.Context, staffEmail, month string) (*MonthlySummary, error)
	UpsertSummary(ctx context.Context, s *MonthlySummary) error
}

// =============================================================================
// SIDE CHANNELS - Best-effort, errors swallowed by the engine
// =============================================================================

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type Notifier interface {
	NotifySubmitted(ctx context.Context, claim *OTClaim, approverEmail string) error
	NotifyDecision(ctx context.Context, claim *OTClaim, decision Decision, remarks string) error
}

type AuditLog interface {
	Record(ctx context.Context, entry ActivityLogEntry) error
	Query(ctx context.Context, f AuditFilter) ([]ActivityLogEntry, error)
}

type AuditFilter struct {
	ActorID string
	ClaimID string
	Actions []ActivityAction
	From    time.Time
	To      time.Time
}
