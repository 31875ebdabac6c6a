/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags and are checked at the
  boundary before anything enters the engine. Business rules stay inside
  the engine; the tags only reject structurally bad payloads.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup
*/
package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/warp/overtime-engine/overtime"
)

var validate = validator.New()

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitClaimRequest is the raw form submission. Times are wall-clock
// strings; the engine parses and validates them.
type SubmitClaimRequest struct {
	StaffEmail string `json:"staff_email" validate:"required,email"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	ClaimType  string `json:"claim_type" validate:"required,oneof=money leave"`
	ProofName  string `json:"proof_name,omitempty"`
	ProofURL   string `json:"proof_url,omitempty" validate:"omitempty,url"`
}

// toClaimRequest parses the wire strings into the engine's typed request.
func (r SubmitClaimRequest) toClaimRequest() (overtime.ClaimRequest, error) {
	date, err := overtime.ParseDate(r.Date)
	if err != nil {
		return overtime.ClaimRequest{}, err
	}
	start, err := overtime.ParseTimeOfDay(r.Start)
	if err != nil {
		return overtime.ClaimRequest{}, err
	}
	end, err := overtime.ParseTimeOfDay(r.End)
	if err != nil {
		return overtime.ClaimRequest{}, err
	}
	req := overtime.ClaimRequest{
		Date:  date,
		Start: start,
		End:   end,
		Type:  overtime.ClaimType(r.ClaimType),
	}
	if r.ProofName != "" || r.ProofURL != "" {
		req.Proof = &overtime.ProofRef{Name: r.ProofName, URL: r.ProofURL}
	}
	return req, nil
}

// DecisionRequest carries approve/reject remarks.
type DecisionRequest struct {
	Remarks string `json:"remarks"`
}

// RecalculateRequest asks for a summary rebuild.
type RecalculateRequest struct {
	StaffEmail string `json:"staff_email" validate:"required,email"`
	Month      string `json:"month" validate:"required,len=7"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ValidationResultDTO struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	BaseHours  string `json:"base_hours,omitempty"`
	Multiplier int    `json:"multiplier,omitempty"`
	TotalHours string `json:"total_hours,omitempty"`
	LeaveDays  string `json:"leave_days,omitempty"`
	Quota      string `json:"quota_status,omitempty"`
}

func toValidationDTO(v *overtime.ValidationResult) ValidationResultDTO {
	dto := ValidationResultDTO{
		Valid:    v.Valid,
		Errors:   emptyIfNil(v.Errors),
		Warnings: emptyIfNil(v.Warnings),
	}
	if c := v.Calculated; c != nil && !c.TotalHours.IsZero() {
		dto.BaseHours = c.BaseHours.String()
		dto.Multiplier = c.Multiplier
		dto.TotalHours = c.TotalHours.String()
		if !c.LeaveDays.IsZero() {
			dto.LeaveDays = c.LeaveDays.String()
		}
		dto.Quota = string(c.Quota.Status)
	}
	return dto
}

type SubmitResultDTO struct {
	ApplicationID string              `json:"application_id,omitempty"`
	Verdict       ValidationResultDTO `json:"verdict"`
}

type ClaimDTO struct {
	ID           string   `json:"id"`
	StaffEmail   string   `json:"staff_email"`
	StaffName    string   `json:"staff_name"`
	Team         string   `json:"team"`
	Date         string   `json:"date"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	BaseHours    string   `json:"base_hours"`
	Holiday      bool     `json:"holiday"`
	Multiplier   int      `json:"multiplier"`
	TotalHours   string   `json:"total_hours"`
	ClaimType    string   `json:"claim_type"`
	LeaveDays    string   `json:"leave_days"`
	ProofName    string   `json:"proof_name,omitempty"`
	ProofURL     string   `json:"proof_url,omitempty"`
	Status       string   `json:"status"`
	SubmittedAt  string   `json:"submitted_at"`
	RestGapHours string   `json:"rest_gap_hours"`
	RestGapValid bool     `json:"rest_gap_valid"`
	Warnings     []string `json:"warnings"`
	ApprovedBy   string   `json:"approved_by,omitempty"`
	DecidedAt    string   `json:"decided_at,omitempty"`
	Remarks      string   `json:"remarks,omitempty"`
}

func toClaimDTO(c *overtime.OTClaim) ClaimDTO {
	dto := ClaimDTO{
		ID:           c.ID,
		StaffEmail:   c.StaffEmail,
		StaffName:    c.StaffName,
		Team:         c.Team,
		Date:         c.Date.String(),
		Start:        c.StartTime.String(),
		End:          c.EndTime.String(),
		BaseHours:    c.BaseHours.String(),
		Holiday:      c.Holiday,
		Multiplier:   c.Multiplier,
		TotalHours:   c.TotalHours.String(),
		ClaimType:    string(c.Type),
		LeaveDays:    c.LeaveDaysEarned.String(),
		Status:       string(c.Status),
		SubmittedAt:  c.SubmittedAt.UTC().Format(time.RFC3339),
		RestGapHours: c.RestGapHours.String(),
		RestGapValid: c.RestGapValid,
		Warnings:     emptyIfNil(c.Warnings),
		ApprovedBy:   c.ApprovedBy,
		Remarks:      c.Remarks,
	}
	if c.Proof != nil {
		dto.ProofName = c.Proof.Name
		dto.ProofURL = c.Proof.URL
	}
	if !c.DecidedAt.IsZero() {
		dto.DecidedAt = c.DecidedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type SummaryDTO struct {
	StaffEmail      string `json:"staff_email"`
	Month           string `json:"month"`
	TotalOTHours    string `json:"total_ot_hours"`
	MoneyClaimHours string `json:"money_claim_hours"`
	LeaveClaimHours string `json:"leave_claim_hours"`
	LeaveDaysEarned string `json:"leave_days_earned"`
	Status          string `json:"status"`
	RecomputedAt    string `json:"recomputed_at"`
}

func toSummaryDTO(s *overtime.MonthlySummary) SummaryDTO {
	return SummaryDTO{
		StaffEmail:      s.StaffEmail,
		Month:           s.Month,
		TotalOTHours:    s.TotalOTHours.String(),
		MoneyClaimHours: s.MoneyClaimHours.String(),
		LeaveClaimHours: s.LeaveClaimHours.String(),
		LeaveDaysEarned: s.LeaveDaysEarned.String(),
		Status:          string(s.Status),
		RecomputedAt:    s.RecomputedAt.UTC().Format(time.RFC3339),
	}
}

type HolidayDTO struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
	Region string `json:"region,omitempty"`
}

type ActivityDTO struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	ClaimID   string `json:"claim_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
