package overtime_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/overtime"
)

func newCalculator() overtime.Calculator {
	return overtime.Calculator{Limits: overtime.DefaultLimits()}
}

func tod(s string) overtime.TimeOfDay { return overtime.MustTimeOfDay(s) }

// =============================================================================
// MULTIPLIER
// =============================================================================

func TestCalculator_NonHoliday_TotalEqualsBase(t *testing.T) {
	res, err := newCalculator().Hours(tod("18:00"), tod("22:00"), false)
	require.NoError(t, err)

	assert.Equal(t, "4", res.BaseHours.String())
	assert.Equal(t, 1, res.Multiplier)
	assert.True(t, res.TotalHours.Equal(res.BaseHours), "non-holiday total must equal base")
}

func TestCalculator_Holiday_DoublesHours(t *testing.T) {
	res, err := newCalculator().Hours(tod("18:00"), tod("22:00"), true)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Multiplier)
	assert.Equal(t, "8", res.TotalHours.String())
}

// =============================================================================
// SESSION CAP
// =============================================================================

func TestCalculator_SessionOverCap_Fails(t *testing.T) {
	// 08:00 -> 21:00 is 13 hours, over the 12 hour cap
	_, err := newCalculator().Hours(tod("08:00"), tod("21:00"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, overtime.ErrSessionTooLong))

	var tooLong *overtime.SessionTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, "13", tooLong.Hours.String())
}

func TestCalculator_SessionExactlyAtCap_Allowed(t *testing.T) {
	res, err := newCalculator().Hours(tod("08:00"), tod("20:00"), false)
	require.NoError(t, err)
	assert.Equal(t, "12", res.BaseHours.String())
}

func TestCalculator_ZeroDuration_Fails(t *testing.T) {
	_, err := newCalculator().Hours(tod("18:00"), tod("18:00"), false)
	assert.True(t, errors.Is(err, overtime.ErrZeroDuration))
}

// =============================================================================
// LEAVE CONVERSION
// =============================================================================

func TestCalculator_LeaveDays(t *testing.T) {
	calc := newCalculator()

	// 12 hours at 6 hours/day = 2.00 days
	assert.Equal(t, "2", calc.LeaveDays(decimal.NewFromInt(12)).String())

	// 4 hours = 0.666... -> 0.67 days
	assert.Equal(t, "0.67", calc.LeaveDays(decimal.NewFromInt(4)).String())
}

func TestCalculator_LeaveDays_RoundTripWithinRounding(t *testing.T) {
	calc := newCalculator()
	hours := decimal.NewFromFloat(9.5)
	days := calc.LeaveDays(hours)
	back := days.Mul(overtime.DefaultLimits().HoursPerLeaveDay)

	diff := back.Sub(hours).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.06)),
		"round-trip drift %s exceeds rounding tolerance", diff)
}
