/*
handlers.go - HTTP API handlers for the overtime engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates every decision to the engine.

ENDPOINTS:
  Claims:
    POST   /api/claims/validate        Dry-run validation
    POST   /api/claims                 Submit (validated, -> Pending)
    POST   /api/claims/draft           Save unvalidated draft
    POST   /api/claims/{id}/submit     Promote draft -> Pending
    GET    /api/claims                 List with filters
    GET    /api/claims/{id}            Get one
    POST   /api/claims/{id}/approve    Approve (team leader)
    POST   /api/claims/{id}/reject     Reject (remarks required)

  Summaries:
    GET    /api/staff/{email}/summary/{month}
    POST   /api/summaries/recalculate

  Reference:
    GET    /api/holidays?year=
    GET    /api/staff/{email}/claims
    GET    /api/activity

ERROR MAPPING (see overtime/errors.go taxonomy):
  - Business-rule outcomes travel inside a 200/422 verdict body, never as
    bare 5xx. A failed submit is 422 with errors[]/warnings[].
  - 400: malformed payload or field
  - 403: wrong role / wrong team
  - 404: unknown staff or claim
  - 409: invalid state, remarks missing, quota block at approval
  - 500: storage failures

AUTHENTICATION:
  None here. Actor identity arrives in the X-Actor header; authentication
  itself is an external collaborator.
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *overtime.Engine
	Store  *sqlite.Store
	Logger *zap.Logger
}

func NewHandler(engine *overtime.Engine, store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, Store: store, Logger: logger}
}

// =============================================================================
// CLAIM HANDLERS
// =============================================================================

// ValidateClaim runs the pipeline without persisting anything.
func (h *Handler) ValidateClaim(w http.ResponseWriter, r *http.Request) {
	body, req, ok := h.decodeSubmit(w, r)
	if !ok {
		return
	}
	verdict, err := h.Engine.ValidateApplication(r.Context(), req, body.StaffEmail)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationDTO(verdict))
}

// SubmitClaim validates and persists a Pending claim.
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	body, req, ok := h.decodeSubmit(w, r)
	if !ok {
		return
	}
	res, err := h.Engine.Submit(r.Context(), req, body.StaffEmail)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dto := SubmitResultDTO{ApplicationID: res.ApplicationID, Verdict: toValidationDTO(res.Verdict)}
	if !res.Verdict.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, dto)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// SaveDraft stores an unvalidated draft.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	body, req, ok := h.decodeSubmit(w, r)
	if !ok {
		return
	}
	id, err := h.Engine.SaveDraft(r.Context(), req, body.StaffEmail)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"application_id": id})
}

// SubmitDraft promotes a draft to Pending after re-validation.
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor header is required", nil)
		return
	}
	res, err := h.Engine.SubmitDraft(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dto := SubmitResultDTO{ApplicationID: res.ApplicationID, Verdict: toValidationDTO(res.Verdict)}
	if !res.Verdict.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, dto)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetClaim returns one claim by id.
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load claim", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Claim not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// ListClaims supports staff/team/month/status filters via query params.
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := overtime.ClaimFilter{
		StaffEmail: q.Get("staff"),
		Team:       q.Get("team"),
		Month:      q.Get("month"),
		Status:     overtime.ClaimStatus(q.Get("status")),
	}
	if d := q.Get("date"); d != "" {
		date, err := overtime.ParseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		filter.Date = &date
	}

	claims, err := h.Store.ListClaims(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list claims", err)
		return
	}
	dtos := make([]ClaimDTO, 0, len(claims))
	for i := range claims {
		dtos = append(dtos, toClaimDTO(&claims[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListStaffClaims returns one staff member's claims.
func (h *Handler) ListStaffClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Store.ListClaims(r.Context(), overtime.ClaimFilter{
		StaffEmail: chi.URLParam(r, "email"),
		Month:      r.URL.Query().Get("month"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list claims", err)
		return
	}
	dtos := make([]ClaimDTO, 0, len(claims))
	for i := range claims {
		dtos = append(dtos, toClaimDTO(&claims[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DECISION HANDLERS
// =============================================================================

func (h *Handler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Engine.Approve)
}

func (h *Handler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Engine.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id, actor, remarks string) (*overtime.OTClaim, error)) {

	actor := r.Header.Get("X-Actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor header is required", nil)
		return
	}

	var body DecisionRequest
	if r.Body != nil {
		// A missing body means empty remarks; the engine decides whether
		// that is acceptable.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	claim, err := op(r.Context(), chi.URLParam(r, "id"), actor, body.Remarks)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(claim))
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	month := chi.URLParam(r, "month")

	s, err := h.Store.GetSummary(r.Context(), email, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load summary", err)
		return
	}
	if s == nil {
		// Absent row: compute on demand rather than 404; the summary is a
		// derived cache.
		s, err = h.Engine.RecalculateSummary(r.Context(), email, month)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute summary", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

func (h *Handler) RecalculateSummary(w http.ResponseWriter, r *http.Request) {
	var body RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request fields", err)
		return
	}
	s, err := h.Engine.RecalculateSummary(r.Context(), body.StaffEmail, body.Month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recalculate summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}
	holidays, err := h.Store.ListHolidays(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hd := range holidays {
		dtos = append(dtos, HolidayDTO{Date: hd.Date.String(), Name: hd.Name, Year: hd.Year, Region: hd.Region})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Store.Query(r.Context(), overtime.AuditFilter{
		ActorID: q.Get("actor"),
		ClaimID: q.Get("claim"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query activity log", err)
		return
	}
	dtos := make([]ActivityDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ActivityDTO{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Detail:    e.Detail,
			ClaimID:   e.ClaimID,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeSubmit(w http.ResponseWriter, r *http.Request) (SubmitClaimRequest, overtime.ClaimRequest, bool) {
	var body SubmitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return body, overtime.ClaimRequest{}, false
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request fields", err)
		return body, overtime.ClaimRequest{}, false
	}
	req, err := body.toClaimRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date or time format", err)
		return body, overtime.ClaimRequest{}, false
	}
	return body, req, true
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case overtime.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, overtime.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case overtime.IsStateError(err), errors.Is(err, overtime.ErrRemarksRequired):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case overtime.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.Logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
