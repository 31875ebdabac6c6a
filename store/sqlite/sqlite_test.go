package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/overtime"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleClaim(id, staff string, date overtime.Date, status overtime.ClaimStatus) *overtime.OTClaim {
	return &overtime.OTClaim{
		ID:           id,
		StaffEmail:   staff,
		StaffName:    "Sample",
		Team:         "ops",
		Date:         date,
		StartTime:    overtime.MustTimeOfDay("18:00"),
		EndTime:      overtime.MustTimeOfDay("22:00"),
		BaseHours:    decimal.NewFromInt(4),
		Multiplier:   1,
		TotalHours:   decimal.NewFromInt(4),
		Type:         overtime.ClaimMoney,
		Status:       status,
		SubmittedAt:  time.Date(2025, time.June, 9, 19, 30, 0, 0, time.UTC),
		RestGapHours: decimal.NewFromInt(8),
		RestGapValid: true,
		Warnings:     []string{"something mild"},
	}
}

// =============================================================================
// CLAIMS
// =============================================================================

func TestClaims_InsertGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := overtime.NewDate(2025, time.June, 10)

	in := sampleClaim("c-1", "a@corp.test", day, overtime.StatusPending)
	in.Proof = &overtime.ProofRef{Name: "roster.pdf", URL: "https://files.corp.test/roster.pdf"}
	require.NoError(t, store.InsertClaim(ctx, in))

	out, err := store.GetClaim(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "a@corp.test", out.StaffEmail)
	assert.Equal(t, day, out.Date)
	assert.Equal(t, "18:00", out.StartTime.String())
	assert.True(t, out.TotalHours.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, overtime.StatusPending, out.Status)
	assert.Equal(t, in.SubmittedAt, out.SubmittedAt)
	assert.Equal(t, []string{"something mild"}, out.Warnings)
	require.NotNil(t, out.Proof)
	assert.Equal(t, "roster.pdf", out.Proof.Name)
}

func TestClaims_GetMissing_NilNil(t *testing.T) {
	store := newTestStore(t)
	out, err := store.GetClaim(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestClaims_ListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	june10 := overtime.NewDate(2025, time.June, 10)
	june11 := overtime.NewDate(2025, time.June, 11)
	may10 := overtime.NewDate(2025, time.May, 10)

	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-1", "a@corp.test", june10, overtime.StatusApproved)))
	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-2", "a@corp.test", june11, overtime.StatusPending)))
	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-3", "a@corp.test", may10, overtime.StatusApproved)))
	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-4", "b@corp.test", june10, overtime.StatusRejected)))

	// month + status (quota / summary hot path)
	got, err := store.ListClaims(ctx, overtime.ClaimFilter{
		StaffEmail: "a@corp.test", Month: "2025-06", Status: overtime.StatusApproved,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-1", got[0].ID)

	// same-day excluding rejected (overlap scan)
	got, err = store.ListClaims(ctx, overtime.ClaimFilter{
		StaffEmail: "b@corp.test", Date: &june10, ExcludeStatus: overtime.StatusRejected,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	// team-wide
	got, err = store.ListClaims(ctx, overtime.ClaimFilter{Team: "ops"})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestClaims_UpdateStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-1", "a@corp.test", overtime.NewDate(2025, time.June, 10), overtime.StatusPending)))

	decidedAt := time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateClaimStatus(ctx, "c-1", overtime.StatusApproved, "lead@corp.test", "ok", decidedAt))

	out, err := store.GetClaim(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusApproved, out.Status)
	assert.Equal(t, "lead@corp.test", out.ApprovedBy)
	assert.Equal(t, "ok", out.Remarks)
	assert.Equal(t, decidedAt, out.DecidedAt)
}

func TestClaims_UpdateStatus_OnlyFromPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertClaim(ctx, sampleClaim("c-1", "a@corp.test", overtime.NewDate(2025, time.June, 10), overtime.StatusPending)))

	require.NoError(t, store.UpdateClaimStatus(ctx, "c-1", overtime.StatusApproved, "lead@corp.test", "", time.Now()))

	// The write is conditional on Pending; a second decision cannot land
	err := store.UpdateClaimStatus(ctx, "c-1", overtime.StatusRejected, "lead@corp.test", "late", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, overtime.ErrInvalidState))

	var stateErr *overtime.InvalidStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, overtime.StatusApproved, stateErr.Status)

	out, err := store.GetClaim(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusApproved, out.Status)
}

func TestClaims_UpdateStatus_Missing(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateClaimStatus(context.Background(), "nope", overtime.StatusApproved, "x", "", time.Now())
	assert.True(t, errors.Is(err, overtime.ErrClaimNotFound))
}

func TestClaims_PromoteDraft(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := overtime.NewDate(2025, time.June, 10)

	draft := sampleClaim("d-1", "a@corp.test", day, overtime.StatusDraft)
	draft.BaseHours, draft.TotalHours = decimal.Zero, decimal.Zero
	require.NoError(t, store.InsertClaim(ctx, draft))

	promoted := sampleClaim("d-1", "a@corp.test", day, overtime.StatusPending)
	require.NoError(t, store.PromoteDraft(ctx, promoted))

	out, err := store.GetClaim(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusPending, out.Status)
	assert.True(t, out.TotalHours.Equal(decimal.NewFromInt(4)))

	// A second promotion finds no draft row
	err = store.PromoteDraft(ctx, promoted)
	assert.True(t, errors.Is(err, overtime.ErrInvalidState))
}

// =============================================================================
// STAFF
// =============================================================================

func TestStaff_UpsertAndTeamLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutStaff(ctx, overtime.StaffMember{
		Email: "a@corp.test", Name: "Alice", Team: "ops",
		Role: overtime.RoleStaff, TeamLeader: "lead@corp.test", Active: true,
	}))
	require.NoError(t, store.PutStaff(ctx, overtime.StaffMember{
		Email: "gone@corp.test", Name: "Gone", Team: "ops",
		Role: overtime.RoleStaff, TeamLeader: "lead@corp.test", Active: false,
	}))

	m, err := store.GetStaff(ctx, "a@corp.test")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, overtime.RoleStaff, m.Role)

	missing, err := store.GetStaff(ctx, "nobody@corp.test")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upsert overwrites
	require.NoError(t, store.PutStaff(ctx, overtime.StaffMember{
		Email: "a@corp.test", Name: "Alice", Team: "platform",
		Role: overtime.RoleTeamLeader, Active: true,
	}))
	m, err = store.GetStaff(ctx, "a@corp.test")
	require.NoError(t, err)
	assert.Equal(t, "platform", m.Team)
	assert.Equal(t, overtime.RoleTeamLeader, m.Role)

	// Inactive members stay out of team listings
	members, err := store.GetTeamMembers(ctx, "lead@corp.test")
	require.NoError(t, err)
	assert.Empty(t, members)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestAttendance_ListBeforeCutoff(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := overtime.NewDate(2025, time.June, 10)

	record := func(out time.Time) overtime.AttendanceRecord {
		return overtime.AttendanceRecord{
			StaffEmail: "a@corp.test",
			Date:       day,
			ClockIn:    out.Add(-9 * time.Hour),
			ClockOut:   out,
			Hours:      decimal.NewFromInt(9),
			ShiftType:  "regular",
		}
	}
	require.NoError(t, store.AddAttendance(ctx, record(time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC))))
	require.NoError(t, store.AddAttendance(ctx, record(time.Date(2025, time.June, 10, 23, 0, 0, 0, time.UTC))))
	// Open shift: no clock-out yet
	require.NoError(t, store.AddAttendance(ctx, overtime.AttendanceRecord{
		StaffEmail: "a@corp.test", Date: day,
		ClockIn: time.Date(2025, time.June, 11, 8, 0, 0, 0, time.UTC),
		Hours:   decimal.Zero,
	}))

	cutoff := time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC)
	got, err := store.ListAttendance(ctx, "a@corp.test", cutoff)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC), got[0].ClockOut)

	// Zero cutoff lists everything, the open shift included
	all, err := store.ListAttendance(ctx, "a@corp.test", time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[2].ClockOut.IsZero())
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_LookupAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := overtime.NewDate(2025, time.June, 10)

	require.NoError(t, store.PutHoliday(ctx, overtime.Holiday{Date: day, Name: "Founders Day", Year: 2025}))
	require.NoError(t, store.PutHoliday(ctx, overtime.Holiday{Date: overtime.NewDate(2024, time.December, 25), Name: "Christmas", Year: 2024}))

	is, err := store.IsHoliday(ctx, day)
	require.NoError(t, err)
	assert.True(t, is)

	is, err = store.IsHoliday(ctx, overtime.NewDate(2025, time.June, 11))
	require.NoError(t, err)
	assert.False(t, is)

	h, err := store.HolidayDetails(ctx, day)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "Founders Day", h.Name)

	list, err := store.ListHolidays(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, day, list[0].Date)
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestSummaries_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &overtime.MonthlySummary{
		StaffEmail: "a@corp.test", Month: "2025-06",
		TotalOTHours: decimal.NewFromInt(4), MoneyClaimHours: decimal.NewFromInt(4),
		LeaveClaimHours: decimal.Zero, LeaveDaysEarned: decimal.Zero,
		Status: overtime.LightGreen, RecomputedAt: time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.UpsertSummary(ctx, first))

	second := *first
	second.TotalOTHours = decimal.NewFromInt(95)
	second.MoneyClaimHours = decimal.NewFromInt(95)
	second.Status = overtime.LightAmber
	require.NoError(t, store.UpsertSummary(ctx, &second))

	got, err := store.GetSummary(ctx, "a@corp.test", "2025-06")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.TotalOTHours.Equal(decimal.NewFromInt(95)))
	assert.Equal(t, overtime.LightAmber, got.Status)

	missing, err := store.GetSummary(ctx, "a@corp.test", "2025-07")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// ACTIVITY LOG
// =============================================================================

func TestActivity_RecordAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	entries := []overtime.ActivityLogEntry{
		{ID: "e-1", ActorID: "a@corp.test", Action: overtime.ActionClaimSubmitted, Detail: "submitted", ClaimID: "c-1", Timestamp: base},
		{ID: "e-2", ActorID: "lead@corp.test", Action: overtime.ActionClaimApproved, Detail: "approved", ClaimID: "c-1", Timestamp: base.Add(time.Hour)},
		{ID: "e-3", ActorID: "a@corp.test", Action: overtime.ActionDraftSaved, Detail: "draft", ClaimID: "c-2", Timestamp: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(ctx, e))
	}

	byClaim, err := store.Query(ctx, overtime.AuditFilter{ClaimID: "c-1"})
	require.NoError(t, err)
	assert.Len(t, byClaim, 2)

	byActor, err := store.Query(ctx, overtime.AuditFilter{ActorID: "a@corp.test"})
	require.NoError(t, err)
	assert.Len(t, byActor, 2)

	byAction, err := store.Query(ctx, overtime.AuditFilter{
		Actions: []overtime.ActivityAction{overtime.ActionClaimApproved},
	})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "e-2", byAction[0].ID)

	windowed, err := store.Query(ctx, overtime.AuditFilter{From: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, windowed, 2)
}
