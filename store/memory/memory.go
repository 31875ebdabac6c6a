// Package memory provides in-memory implementations of every engine
// collaborator, for tests and dev mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/overtime-engine/overtime"
)

// Store implements overtime.StaffDirectory, ClaimStore, AttendanceStore,
// HolidayCalendar, SummaryStore, and AuditLog behind one mutex.
type Store struct {
	mu         sync.RWMutex
	staff      map[string]overtime.StaffMember
	claims     map[string]overtime.OTClaim
	attendance map[string][]overtime.AttendanceRecord
	holidays   map[overtime.Date]overtime.Holiday
	summaries  map[summaryKey]overtime.MonthlySummary
	activity   []overtime.ActivityLogEntry
}

type summaryKey struct {
	Staff string
	Month string
}

func New() *Store {
	return &Store{
		staff:      make(map[string]overtime.StaffMember),
		claims:     make(map[string]overtime.OTClaim),
		attendance: make(map[string][]overtime.AttendanceRecord),
		holidays:   make(map[overtime.Date]overtime.Holiday),
		summaries:  make(map[summaryKey]overtime.MonthlySummary),
	}
}

// =============================================================================
// STAFF DIRECTORY
// =============================================================================

func (s *Store) PutStaff(m overtime.StaffMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[m.Email] = m
}

func (s *Store) GetStaff(_ context.Context, email string) (*overtime.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.staff[email]
	if !ok {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

func (s *Store) GetTeamMembers(_ context.Context, leaderEmail string) ([]overtime.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []overtime.StaffMember
	for _, m := range s.staff {
		if m.TeamLeader == leaderEmail && m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// =============================================================================
// CLAIM STORE
// =============================================================================

func (s *Store) InsertClaim(_ context.Context, c *overtime.OTClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.claims[c.ID]; exists {
		return fmt.Errorf("claim %s already exists", c.ID)
	}
	s.claims[c.ID] = *cloneClaim(c)
	return nil
}

func (s *Store) GetClaim(_ context.Context, id string) (*overtime.OTClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, nil
	}
	cp := cloneClaim(&c)
	return cp, nil
}

func (s *Store) ListClaims(_ context.Context, f overtime.ClaimFilter) ([]overtime.OTClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []overtime.OTClaim
	for _, c := range s.claims {
		if !matches(c, f) {
			continue
		}
		out = append(out, *cloneClaim(&c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matches(c overtime.OTClaim, f overtime.ClaimFilter) bool {
	if f.StaffEmail != "" && c.StaffEmail != f.StaffEmail {
		return false
	}
	if f.Team != "" && c.Team != f.Team {
		return false
	}
	if f.Date != nil && !c.Date.Equal(*f.Date) {
		return false
	}
	if f.Month != "" && c.MonthKey() != f.Month {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && c.Status == f.ExcludeStatus {
		return false
	}
	return true
}

func (s *Store) UpdateClaimStatus(_ context.Context, id string, status overtime.ClaimStatus, approver, remarks string, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return fmt.Errorf("%w: %s", overtime.ErrClaimNotFound, id)
	}
	if c.Status != overtime.StatusPending {
		return &overtime.InvalidStateError{ClaimID: id, Status: c.Status, Action: "decide"}
	}
	c.Status = status
	c.ApprovedBy = approver
	c.Remarks = remarks
	c.DecidedAt = decidedAt
	s.claims[id] = c
	return nil
}

func (s *Store) PromoteDraft(_ context.Context, c *overtime.OTClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.claims[c.ID]
	if !ok {
		return fmt.Errorf("%w: %s", overtime.ErrClaimNotFound, c.ID)
	}
	if existing.Status != overtime.StatusDraft {
		return fmt.Errorf("%w: %s is not a draft", overtime.ErrInvalidState, c.ID)
	}
	s.claims[c.ID] = *cloneClaim(c)
	return nil
}

func cloneClaim(c *overtime.OTClaim) *overtime.OTClaim {
	cp := *c
	if c.Proof != nil {
		p := *c.Proof
		cp.Proof = &p
	}
	cp.Warnings = append([]string(nil), c.Warnings...)
	return &cp
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func (s *Store) AddAttendance(r overtime.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[r.StaffEmail] = append(s.attendance[r.StaffEmail], r)
}

func (s *Store) ListAttendance(_ context.Context, staffEmail string, before time.Time) ([]overtime.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []overtime.AttendanceRecord
	for _, r := range s.attendance[staffEmail] {
		if !before.IsZero() && (r.ClockOut.IsZero() || !r.ClockOut.Before(before)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

func (s *Store) PutHoliday(h overtime.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[h.Date] = h
}

func (s *Store) IsHoliday(_ context.Context, d overtime.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.holidays[d]
	return ok, nil
}

func (s *Store) HolidayDetails(_ context.Context, d overtime.Date) (*overtime.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holidays[d]
	if !ok {
		return nil, nil
	}
	cp := h
	return &cp, nil
}

func (s *Store) ListHolidays(_ context.Context, year int) ([]overtime.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []overtime.Holiday
	for _, h := range s.holidays {
		if year == 0 || h.Year == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// SUMMARY STORE
// =============================================================================

func (s *Store) GetSummary(_ context.Context, staffEmail, month string) (*overtime.MonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[summaryKey{staffEmail, month}]
	if !ok {
		return nil, nil
	}
	cp := sum
	return &cp, nil
}

func (s *Store) UpsertSummary(_ context.Context, sum *overtime.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{sum.StaffEmail, sum.Month}] = *sum
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) Record(_ context.Context, entry overtime.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, entry)
	return nil
}

func (s *Store) Query(_ context.Context, f overtime.AuditFilter) ([]overtime.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []overtime.ActivityLogEntry
	for _, e := range s.activity {
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.ClaimID != "" && e.ClaimID != f.ClaimID {
			continue
		}
		if len(f.Actions) > 0 && !containsAction(f.Actions, e.Action) {
			continue
		}
		if !f.From.IsZero() && e.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Timestamp.After(f.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func containsAction(actions []overtime.ActivityAction, a overtime.ActivityAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
