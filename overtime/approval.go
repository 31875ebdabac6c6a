/*
approval.go - Claim lifecycle state machine and engine entry points

PURPOSE:
  Engine is the single service collaborators talk to. It owns the
  Draft/Pending/Approved/Rejected lifecycle:

    Submit       external -> Pending   (requires a passing validation)
    SaveDraft    external -> Draft     (unvalidated save)
    SubmitDraft  Draft    -> Pending   (re-validates, recomputes snapshot)
    Approve      Pending  -> Approved  (re-checks quota, rebuilds summary)
    Reject       Pending  -> Rejected  (remarks required, no summary change)

  Transitions are one-directional; anything other than approving or
  rejecting a Pending claim is an InvalidStateError.

CONCURRENCY:
  Two concurrent approvals could both pass the quota pre-check and jointly
  overrun the monthly cap. The engine serializes the quota-check-and-write
  section per staff member with a keyed mutex; stores stay unaware.

SIDE EFFECTS:
  Notification and audit writes are best-effort. Failures are logged and
  swallowed, never rolled into the primary operation's error.
*/
package overtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Engine struct {
	Staff      StaffDirectory
	Claims     ClaimStore
	Validator  Validator
	Quota      QuotaEngine
	Aggregator Aggregator
	Notifier   Notifier
	Audit      AuditLog
	Logger     *zap.Logger
	Now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Dependencies lists everything the engine needs wired in.
type Dependencies struct {
	Staff      StaffDirectory
	Claims     ClaimStore
	Attendance AttendanceStore
	Holidays   HolidayCalendar
	Summaries  SummaryStore
	Notifier   Notifier
	Audit      AuditLog
	Logger     *zap.Logger
	Limits     Limits
	Now        func() time.Time
}

// NewEngine wires the rule components around the given collaborators.
func NewEngine(d Dependencies) *Engine {
	quota := QuotaEngine{Claims: d.Claims, Limits: d.Limits}
	calc := Calculator{Limits: d.Limits}
	return &Engine{
		Staff:  d.Staff,
		Claims: d.Claims,
		Validator: Validator{
			Staff:      d.Staff,
			Holidays:   d.Holidays,
			Calculator: calc,
			Quota:      quota,
			RestGap:    RestGapChecker{Attendance: d.Attendance, Limits: d.Limits},
			Overlap:    OverlapDetector{Claims: d.Claims},
			Limits:     d.Limits,
			Now:        d.Now,
		},
		Quota: quota,
		Aggregator: Aggregator{
			Claims:    d.Claims,
			Summaries: d.Summaries,
			Quota:     quota,
			Now:       d.Now,
		},
		Notifier: d.Notifier,
		Audit:    d.Audit,
		Logger:   d.Logger,
		Now:      d.Now,
	}
}

// SubmitResult pairs the new claim id with the verdict that admitted it.
type SubmitResult struct {
	ApplicationID string
	Verdict       *ValidationResult
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

// staffLock returns the serialization point for one staff member's quota.
func (e *Engine) staffLock(staffEmail string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	l, ok := e.locks[staffEmail]
	if !ok {
		l = &sync.Mutex{}
		e.locks[staffEmail] = l
	}
	return l
}

// =============================================================================
// VALIDATE - Pure pre-check, exposed for dry runs
// =============================================================================

func (e *Engine) ValidateApplication(ctx context.Context, req ClaimRequest, staffEmail string) (*ValidationResult, error) {
	return e.Validator.Validate(ctx, req, staffEmail)
}

// =============================================================================
// SUBMIT - The only path that creates a Pending claim directly
// =============================================================================

// Submit validates the request and, if it passes, persists a Pending claim
// carrying the full submission-time snapshot. A failing verdict is returned
// with no ApplicationID and nothing persisted.
func (e *Engine) Submit(ctx context.Context, req ClaimRequest, staffEmail string) (*SubmitResult, error) {
	lock := e.staffLock(staffEmail)
	lock.Lock()
	defer lock.Unlock()

	verdict, err := e.Validator.Validate(ctx, req, staffEmail)
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		return &SubmitResult{Verdict: verdict}, nil
	}

	claim := e.buildClaim(req, verdict, StatusPending)
	if err := e.Claims.InsertClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist claim: %w", err)
	}

	e.notifySubmitted(ctx, claim, verdict.Calculated.Staff.TeamLeader)
	e.audit(ctx, staffEmail, ActionClaimSubmitted,
		fmt.Sprintf("submitted %s claim for %s hours on %s", claim.Type, claim.TotalHours, claim.Date), claim.ID)

	return &SubmitResult{ApplicationID: claim.ID, Verdict: verdict}, nil
}

// SaveDraft stores an unvalidated claim in Draft. Only the staff record is
// resolved; no business rule runs until the draft is submitted.
func (e *Engine) SaveDraft(ctx context.Context, req ClaimRequest, staffEmail string) (string, error) {
	staff, err := e.Staff.GetStaff(ctx, staffEmail)
	if err != nil {
		return "", err
	}
	if staff == nil {
		return "", fmt.Errorf("%w: %s", ErrStaffNotFound, staffEmail)
	}

	claim := &OTClaim{
		ID:          uuid.NewString(),
		StaffEmail:  staff.Email,
		StaffName:   staff.Name,
		Team:        staff.Team,
		Date:        req.Date,
		StartTime:   req.Start,
		EndTime:     req.End,
		Type:        req.Type,
		Proof:       req.Proof,
		Status:      StatusDraft,
		SubmittedAt: e.now(),
	}
	if err := e.Claims.InsertClaim(ctx, claim); err != nil {
		return "", fmt.Errorf("persist draft: %w", err)
	}
	e.audit(ctx, staffEmail, ActionDraftSaved,
		fmt.Sprintf("saved draft for %s %s-%s", claim.Date, claim.StartTime, claim.EndTime), claim.ID)
	return claim.ID, nil
}

// SubmitDraft re-runs the full pipeline with the draft's fields and, on a
// passing verdict, promotes it to Pending with a freshly computed snapshot.
func (e *Engine) SubmitDraft(ctx context.Context, id, staffEmail string) (*SubmitResult, error) {
	draft, err := e.Claims.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}
	if draft.StaffEmail != staffEmail {
		return nil, ErrNotAuthorized
	}
	if draft.Status != StatusDraft {
		return nil, &InvalidStateError{ClaimID: id, Status: draft.Status, Action: "submit draft"}
	}

	lock := e.staffLock(staffEmail)
	lock.Lock()
	defer lock.Unlock()

	// The draft's own row is already in the store; exclude it from the
	// overlap scan or it would always conflict with itself.
	req := ClaimRequest{
		Date:      draft.Date,
		Start:     draft.StartTime,
		End:       draft.EndTime,
		Type:      draft.Type,
		Proof:     draft.Proof,
		ExcludeID: draft.ID,
	}
	verdict, err := e.Validator.Validate(ctx, req, staffEmail)
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		return &SubmitResult{Verdict: verdict}, nil
	}

	promoted := e.buildClaim(req, verdict, StatusPending)
	promoted.ID = draft.ID
	if err := e.Claims.PromoteDraft(ctx, promoted); err != nil {
		return nil, fmt.Errorf("promote draft: %w", err)
	}

	e.notifySubmitted(ctx, promoted, verdict.Calculated.Staff.TeamLeader)
	e.audit(ctx, staffEmail, ActionDraftSubmitted,
		fmt.Sprintf("submitted draft for %s hours on %s", promoted.TotalHours, promoted.Date), promoted.ID)

	return &SubmitResult{ApplicationID: promoted.ID, Verdict: verdict}, nil
}

func (e *Engine) buildClaim(req ClaimRequest, verdict *ValidationResult, status ClaimStatus) *OTClaim {
	calc := verdict.Calculated
	return &OTClaim{
		ID:              uuid.NewString(),
		StaffEmail:      calc.Staff.Email,
		StaffName:       calc.Staff.Name,
		Team:            calc.Staff.Team,
		Date:            req.Date,
		StartTime:       req.Start,
		EndTime:         req.End,
		BaseHours:       calc.BaseHours,
		Holiday:         calc.Holiday,
		Multiplier:      calc.Multiplier,
		TotalHours:      calc.TotalHours,
		Type:            req.Type,
		LeaveDaysEarned: calc.LeaveDays,
		Proof:           req.Proof,
		Status:          status,
		SubmittedAt:     e.now(),
		RestGapHours:    calc.RestGap.GapHours,
		RestGapValid:    calc.RestGap.Valid,
		Warnings:        verdict.Warnings,
	}
}

// =============================================================================
// APPROVE / REJECT - Pending is the only state with legal transitions
// =============================================================================

// Approve moves a Pending claim to Approved. The monthly quota is
// re-checked inside the per-staff critical section with the claim's own
// total hours; a block leaves the claim Pending. On success the monthly
// summary is rebuilt before the best-effort side effects fire.
func (e *Engine) Approve(ctx context.Context, id, approverEmail, remarks string) (*OTClaim, error) {
	claim, err := e.loadForDecision(ctx, id, approverEmail, "approve")
	if err != nil {
		return nil, err
	}

	lock := e.staffLock(claim.StaffEmail)
	lock.Lock()
	defer lock.Unlock()

	// Re-validate quota at decision time; other claims may have been
	// approved since submission.
	quota, err := e.Quota.Check(ctx, claim.StaffEmail, claim.TotalHours, claim.MonthKey())
	if err != nil {
		return nil, err
	}
	if !quota.CanApply {
		return nil, &QuotaExceededError{
			StaffEmail: claim.StaffEmail,
			Month:      claim.MonthKey(),
			Projected:  quota.ProjectedHours,
			Max:        e.Quota.Limits.MaxOTHours,
		}
	}

	decidedAt := e.now()
	if err := e.Claims.UpdateClaimStatus(ctx, id, StatusApproved, approverEmail, remarks, decidedAt); err != nil {
		return nil, fmt.Errorf("approve claim: %w", err)
	}
	claim.Status = StatusApproved
	claim.ApprovedBy = approverEmail
	claim.DecidedAt = decidedAt
	claim.Remarks = remarks

	if _, err := e.Aggregator.Recalculate(ctx, claim.StaffEmail, claim.MonthKey()); err != nil {
		// The transition stands; the summary is a cache and can be rebuilt.
		e.logger().Error("summary recompute failed after approval",
			zap.String("claim", id), zap.String("staff", claim.StaffEmail), zap.Error(err))
	}

	e.notifyDecision(ctx, claim, DecisionApproved, remarks)
	e.audit(ctx, approverEmail, ActionClaimApproved,
		fmt.Sprintf("approved %s hours for %s on %s", claim.TotalHours, claim.StaffEmail, claim.Date), id)

	return claim, nil
}

// Reject moves a Pending claim to Rejected. Remarks are mandatory. Rejected
// hours never count, so no summary recomputation happens.
func (e *Engine) Reject(ctx context.Context, id, approverEmail, remarks string) (*OTClaim, error) {
	if strings.TrimSpace(remarks) == "" {
		return nil, ErrRemarksRequired
	}

	claim, err := e.loadForDecision(ctx, id, approverEmail, "reject")
	if err != nil {
		return nil, err
	}

	decidedAt := e.now()
	if err := e.Claims.UpdateClaimStatus(ctx, id, StatusRejected, approverEmail, remarks, decidedAt); err != nil {
		return nil, fmt.Errorf("reject claim: %w", err)
	}
	claim.Status = StatusRejected
	claim.ApprovedBy = approverEmail
	claim.DecidedAt = decidedAt
	claim.Remarks = remarks

	e.notifyDecision(ctx, claim, DecisionRejected, remarks)
	e.audit(ctx, approverEmail, ActionClaimRejected,
		fmt.Sprintf("rejected claim of %s on %s: %s", claim.StaffEmail, claim.Date, remarks), id)

	return claim, nil
}

// loadForDecision resolves the claim and approver and applies the shared
// guards: team-leader role, matching team, Pending status.
func (e *Engine) loadForDecision(ctx context.Context, id, approverEmail, action string) (*OTClaim, error) {
	claim, err := e.Claims.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	approver, err := e.Staff.GetStaff(ctx, approverEmail)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaffNotFound, approverEmail)
	}

	// Authorization is by team match, not claim ownership.
	if approver.Role != RoleTeamLeader || approver.Team != claim.Team {
		return nil, fmt.Errorf("%w: %s cannot %s claims of team %s",
			ErrNotAuthorized, approverEmail, action, claim.Team)
	}

	if claim.Status != StatusPending {
		return nil, &InvalidStateError{ClaimID: id, Status: claim.Status, Action: action}
	}
	return claim, nil
}

// =============================================================================
// SUMMARY - External recalculation entry point
// =============================================================================

func (e *Engine) RecalculateSummary(ctx context.Context, staffEmail, monthKey string) (*MonthlySummary, error) {
	s, err := e.Aggregator.Recalculate(ctx, staffEmail, monthKey)
	if err != nil {
		return nil, err
	}
	e.audit(ctx, "system", ActionSummaryRebuilt,
		fmt.Sprintf("rebuilt summary for %s %s: %s hours", staffEmail, monthKey, s.TotalOTHours), "")
	return s, nil
}

// =============================================================================
// BEST-EFFORT SIDE EFFECTS
// =============================================================================

func (e *Engine) notifySubmitted(ctx context.Context, claim *OTClaim, approverEmail string) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.NotifySubmitted(ctx, claim, approverEmail); err != nil {
		e.logger().Warn("submission notification failed",
			zap.String("claim", claim.ID), zap.Error(err))
	}
}

func (e *Engine) notifyDecision(ctx context.Context, claim *OTClaim, d Decision, remarks string) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.NotifyDecision(ctx, claim, d, remarks); err != nil {
		e.logger().Warn("decision notification failed",
			zap.String("claim", claim.ID), zap.String("decision", string(d)), zap.Error(err))
	}
}

func (e *Engine) audit(ctx context.Context, actor string, action ActivityAction, detail, claimID string) {
	if e.Audit == nil {
		return
	}
	entry := ActivityLogEntry{
		ID:        uuid.NewString(),
		ActorID:   actor,
		Action:    action,
		Detail:    detail,
		ClaimID:   claimID,
		Timestamp: e.now(),
	}
	if err := e.Audit.Record(ctx, entry); err != nil {
		e.logger().Warn("audit write failed",
			zap.String("action", string(action)), zap.Error(err))
	}
}
