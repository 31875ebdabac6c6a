package overtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/memory"
)

func newAggregator(store *memory.Store) overtime.Aggregator {
	return overtime.Aggregator{
		Claims:    store,
		Summaries: store,
		Quota:     overtime.QuotaEngine{Claims: store, Limits: overtime.DefaultLimits()},
		Now:       func() time.Time { return testNow },
	}
}

func seedApprovedTyped(t *testing.T, store *memory.Store, staff string, date overtime.Date, hours float64, typ overtime.ClaimType) {
	t.Helper()
	h := decimal.NewFromFloat(hours)
	err := store.InsertClaim(context.Background(), &overtime.OTClaim{
		ID:          uuid.NewString(),
		StaffEmail:  staff,
		StaffName:   "Seed",
		Team:        "ops",
		Date:        date,
		StartTime:   tod("18:00"),
		EndTime:     tod("20:00"),
		BaseHours:   h,
		Multiplier:  1,
		TotalHours:  h,
		Type:        typ,
		Status:      overtime.StatusApproved,
		SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestRecalculate_PartitionsByClaimType(t *testing.T) {
	// GIVEN: 10 money hours and 9 leave hours approved in June
	store := memory.New()
	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 3), 10, overtime.ClaimMoney)
	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 5), 9, overtime.ClaimLeave)

	s, err := newAggregator(store).Recalculate(context.Background(), "a@corp.test", "2025-06")
	require.NoError(t, err)

	assert.Equal(t, "19", s.TotalOTHours.String())
	assert.Equal(t, "10", s.MoneyClaimHours.String())
	assert.Equal(t, "9", s.LeaveClaimHours.String())
	// 9 leave hours at 6 hours per day = 1.5 days
	assert.Equal(t, "1.5", s.LeaveDaysEarned.String())
	assert.Equal(t, overtime.LightGreen, s.Status)
	assert.Equal(t, testNow, s.RecomputedAt)
}

func TestRecalculate_IgnoresOtherStatusesAndMonths(t *testing.T) {
	store := memory.New()
	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 3), 4, overtime.ClaimMoney)
	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.May, 3), 8, overtime.ClaimMoney)
	seedClaim(t, store, "pend-1", "a@corp.test", overtime.NewDate(2025, time.June, 4), "18:00", "20:00", overtime.StatusPending)
	seedClaim(t, store, "rej-1", "a@corp.test", overtime.NewDate(2025, time.June, 5), "18:00", "20:00", overtime.StatusRejected)

	s, err := newAggregator(store).Recalculate(context.Background(), "a@corp.test", "2025-06")
	require.NoError(t, err)
	assert.Equal(t, "4", s.TotalOTHours.String())
}

func TestRecalculate_TrafficLight(t *testing.T) {
	tests := []struct {
		hours float64
		want  overtime.TrafficLight
	}{
		{60, overtime.LightGreen},
		{90, overtime.LightAmber},
		{104, overtime.LightRed},
		{110, overtime.LightRed},
	}
	for _, tt := range tests {
		store := memory.New()
		seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 3), tt.hours, overtime.ClaimMoney)

		s, err := newAggregator(store).Recalculate(context.Background(), "a@corp.test", "2025-06")
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Status, "total %v hours", tt.hours)
	}
}

func TestRecalculate_OverwritesInPlace(t *testing.T) {
	store := memory.New()
	agg := newAggregator(store)
	ctx := context.Background()

	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 3), 4, overtime.ClaimMoney)
	_, err := agg.Recalculate(ctx, "a@corp.test", "2025-06")
	require.NoError(t, err)

	seedApprovedTyped(t, store, "a@corp.test", overtime.NewDate(2025, time.June, 4), 3, overtime.ClaimMoney)
	_, err = agg.Recalculate(ctx, "a@corp.test", "2025-06")
	require.NoError(t, err)

	s, err := store.GetSummary(ctx, "a@corp.test", "2025-06")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "7", s.TotalOTHours.String())
}

func TestRecalculate_EmptyMonth_ZeroRow(t *testing.T) {
	store := memory.New()
	s, err := newAggregator(store).Recalculate(context.Background(), "a@corp.test", "2025-06")
	require.NoError(t, err)

	assert.True(t, s.TotalOTHours.IsZero())
	assert.Equal(t, overtime.LightGreen, s.Status)
}
