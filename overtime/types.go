/*
Package overtime provides the core overtime request-and-approval engine.

PURPOSE:
  This package contains the domain types and business rules that decide
  whether a submitted OT claim is legal, how many hours it counts for, how
  it affects a staff member's rolling monthly quota, and how approval and
  rejection transitions keep the monthly summaries consistent.

KEY CONCEPTS IN THIS FILE (types.go):
  - StaffMember: directory record, read-only to the engine
  - OTClaim: the central entity, a single dated time-range submission
  - AttendanceRecord: clock-in/out input for rest-gap checks
  - MonthlySummary: derived per-staff-per-month aggregate (always a cache)
  - Limits: the injected configuration surface (caps, thresholds, rates)

DESIGN PRINCIPLES:
  1. Precision: uses decimal.Decimal for all hour math, rounded to 2dp
  2. Snapshots: a claim captures name/team/hours/gap at submission time
     and is never re-derived after it goes Pending
  3. Configuration is a value threaded in at construction, not a global

SEE ALSO:
  - validator.go: the ordered rule pipeline
  - approval.go: the Pending -> Approved/Rejected state machine
  - summary.go: monthly aggregation
*/
package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS
// =============================================================================

type Role string

const (
	RoleStaff      Role = "staff"
	RoleTeamLeader Role = "team_leader"
	RoleManagement Role = "management"
)

type ClaimStatus string

const (
	StatusDraft    ClaimStatus = "draft"
	StatusPending  ClaimStatus = "pending"
	StatusApproved ClaimStatus = "approved"
	StatusRejected ClaimStatus = "rejected"
)

type ClaimType string

const (
	ClaimMoney ClaimType = "money"
	ClaimLeave ClaimType = "leave"
)

// TrafficLight classifies quota consumption for dashboards.
type TrafficLight string

const (
	LightGreen TrafficLight = "green"
	LightAmber TrafficLight = "amber"
	LightRed   TrafficLight = "red"
)

// =============================================================================
// STAFF DIRECTORY RECORD
// =============================================================================

// StaffMember is owned by an external directory process; the engine only
// reads it. Email doubles as the staff identifier.
type StaffMember struct {
	Email      string
	Name       string
	Team       string
	Role       Role
	TeamLeader string // email of the direct approver (Staff/TeamLeader roles)
	Active     bool
}

// =============================================================================
// OT CLAIM - The central entity
// =============================================================================

// ProofRef points at an externally stored supporting document. Independent
// of validation; the engine carries it through untouched.
type ProofRef struct {
	Name string
	URL  string
}

type OTClaim struct {
	ID string

	// Ownership snapshot, captured at submission and never re-derived.
	StaffEmail string
	StaffName  string
	Team       string

	Date      Date
	StartTime TimeOfDay
	EndTime   TimeOfDay

	BaseHours  decimal.Decimal
	Holiday    bool
	Multiplier int // 1, or 2 on designated holidays
	TotalHours decimal.Decimal

	Type            ClaimType
	LeaveDaysEarned decimal.Decimal // zero unless Type == ClaimLeave
	Proof           *ProofRef

	Status      ClaimStatus
	SubmittedAt time.Time

	// Rest-gap snapshot at submission time.
	RestGapHours decimal.Decimal
	RestGapValid bool

	Warnings []string

	// Decision fields, populated only after approve/reject.
	ApprovedBy string
	DecidedAt  time.Time
	Remarks    string
}

// MonthKey returns the "YYYY-MM" grouping key of the claim's OT date.
func (c *OTClaim) MonthKey() string { return c.Date.MonthKey() }

// =============================================================================
// ATTENDANCE RECORD - Read-only input for rest-gap checks
// =============================================================================

type AttendanceRecord struct {
	StaffEmail string
	Date       Date
	ClockIn    time.Time
	ClockOut   time.Time // zero value = still clocked in / missing
	Hours      decimal.Decimal
	ShiftType  string
}

// =============================================================================
// HOLIDAY - Static reference data
// =============================================================================

type Holiday struct {
	Date   Date
	Name   string
	Year   int
	Region string
}

// =============================================================================
// MONTHLY SUMMARY - Derived cache, always recomputable from approved claims
// =============================================================================

type MonthlySummary struct {
	StaffEmail      string
	Month           string // "YYYY-MM"
	TotalOTHours    decimal.Decimal
	MoneyClaimHours decimal.Decimal
	LeaveClaimHours decimal.Decimal
	LeaveDaysEarned decimal.Decimal
	Status          TrafficLight
	RecomputedAt    time.Time
}

// =============================================================================
// ACTIVITY LOG - Append-only audit trail
// =============================================================================

type ActivityAction string

const (
	ActionClaimSubmitted ActivityAction = "claim_submitted"
	ActionDraftSaved     ActivityAction = "draft_saved"
	ActionDraftSubmitted ActivityAction = "draft_submitted"
	ActionClaimApproved  ActivityAction = "claim_approved"
	ActionClaimRejected  ActivityAction = "claim_rejected"
	ActionSummaryRebuilt ActivityAction = "summary_rebuilt"
)

type ActivityLogEntry struct {
	ID        string
	ActorID   string
	Action    ActivityAction
	Detail    string
	ClaimID   string // optional
	Timestamp time.Time
}

// =============================================================================
// LIMITS - Injected configuration surface
// =============================================================================

// Limits carries every tunable the rule pipeline consults. It is threaded
// into each component at construction so tests can vary limits per case.
type Limits struct {
	MaxOTHours        decimal.Decimal // hard monthly cap (projected above this blocks)
	WarningThreshold  decimal.Decimal // Amber at or above this
	MaxSessionHours   decimal.Decimal // single-session cap
	MinRestGapHours   decimal.Decimal // rest gap below this is flagged
	MaxFutureDays     int             // how far ahead a claim may be dated
	HoursPerLeaveDay  decimal.Decimal // leave-claim conversion divisor
	HolidayMultiplier int
}

func DefaultLimits() Limits {
	return Limits{
		MaxOTHours:        decimal.NewFromInt(104),
		WarningThreshold:  decimal.NewFromInt(90),
		MaxSessionHours:   decimal.NewFromInt(12),
		MinRestGapHours:   decimal.NewFromInt(4),
		MaxFutureDays:     7,
		HoursPerLeaveDay:  decimal.NewFromInt(6),
		HolidayMultiplier: 2,
	}
}

// =============================================================================
// CLAIM REQUEST - Typed form submission
// =============================================================================

// ClaimRequest is the explicit request structure a submission arrives as,
// already parsed from whatever transport carried it.
type ClaimRequest struct {
	Date  Date
	Start TimeOfDay
	End   TimeOfDay
	Type  ClaimType
	Proof *ProofRef

	// ExcludeID names the claim being edited or promoted, so the overlap
	// scan does not report the claim as conflicting with its own row.
	ExcludeID string
}
