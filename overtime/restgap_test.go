package overtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/memory"
)

func attendance(staff string, date overtime.Date, in, out string) overtime.AttendanceRecord {
	r := overtime.AttendanceRecord{
		StaffEmail: staff,
		Date:       date,
		ClockIn:    overtime.MustTimeOfDay(in).On(date),
	}
	if out != "" {
		r.ClockOut = overtime.MustTimeOfDay(out).On(date)
	}
	return r
}

func newGapChecker(store *memory.Store) overtime.RestGapChecker {
	return overtime.RestGapChecker{Attendance: store, Limits: overtime.DefaultLimits()}
}

func TestRestGap_SufficientRest(t *testing.T) {
	// Clock-out 12:00, OT at 18:00 -> 6 hours of rest, above the 4 hour floor
	store := memory.New()
	day := overtime.NewDate(2025, time.June, 10)
	store.AddAttendance(attendance("a@corp.test", day, "08:00", "12:00"))

	res, err := newGapChecker(store).Check(context.Background(), "a@corp.test", tod("18:00").On(day))
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, "6", res.GapHours.String())
	require.NotNil(t, res.LastClockOut)
}

func TestRestGap_ShortRest_Invalid(t *testing.T) {
	store := memory.New()
	day := overtime.NewDate(2025, time.June, 10)
	store.AddAttendance(attendance("a@corp.test", day, "08:00", "17:00"))

	res, err := newGapChecker(store).Check(context.Background(), "a@corp.test", tod("18:00").On(day))
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.Equal(t, "1", res.GapHours.String())
}

func TestRestGap_ClosestQualifyingPredecessor(t *testing.T) {
	// GIVEN: several clock-outs, one after the OT start
	// THEN: the latest clock-out strictly before the OT start wins,
	//       not the chronologically newest record
	store := memory.New()
	day := overtime.NewDate(2025, time.June, 10)
	store.AddAttendance(attendance("a@corp.test", day.AddDays(-1), "08:00", "17:00"))
	store.AddAttendance(attendance("a@corp.test", day, "06:00", "10:00"))
	store.AddAttendance(attendance("a@corp.test", day, "19:00", "21:00")) // after OT start

	otStart := tod("18:00").On(day)
	res, err := newGapChecker(store).Check(context.Background(), "a@corp.test", otStart)
	require.NoError(t, err)

	require.NotNil(t, res.LastClockOut)
	assert.Equal(t, tod("10:00").On(day), *res.LastClockOut)
	assert.Equal(t, "8", res.GapHours.String())
	assert.True(t, res.Valid)
}

func TestRestGap_NoRecords_InvalidNotPass(t *testing.T) {
	// Missing attendance is policy-data-absent, not a free pass.
	store := memory.New()
	day := overtime.NewDate(2025, time.June, 10)

	res, err := newGapChecker(store).Check(context.Background(), "a@corp.test", tod("18:00").On(day))
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.True(t, res.GapHours.IsZero())
	assert.Nil(t, res.LastClockOut)
}

func TestRestGap_OpenShiftIgnored(t *testing.T) {
	// A record with no clock-out cannot anchor the gap.
	store := memory.New()
	day := overtime.NewDate(2025, time.June, 10)
	store.AddAttendance(attendance("a@corp.test", day, "08:00", ""))

	res, err := newGapChecker(store).Check(context.Background(), "a@corp.test", tod("18:00").On(day))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Nil(t, res.LastClockOut)
}
