package overtime

import "github.com/shopspring/decimal"

// =============================================================================
// OT HOURS CALCULATOR
// =============================================================================

// Calculator converts a session's time bounds plus the holiday flag into
// credited hours. Pure; the only state is the injected limits.
type Calculator struct {
	Limits Limits
}

// HoursResult carries the computed crediting of one session.
type HoursResult struct {
	BaseHours  decimal.Decimal
	Multiplier int
	TotalHours decimal.Decimal
}

// Hours computes base hours from the session bounds, applies the holiday
// multiplier, and enforces the per-session cap.
func (c Calculator) Hours(start, end TimeOfDay, holiday bool) (HoursResult, error) {
	base := DurationHours(start, end)
	if base.LessThanOrEqual(decimal.Zero) {
		return HoursResult{}, ErrZeroDuration
	}
	if base.GreaterThan(c.Limits.MaxSessionHours) {
		return HoursResult{}, &SessionTooLongError{Hours: base, Max: c.Limits.MaxSessionHours}
	}

	multiplier := 1
	if holiday {
		multiplier = c.Limits.HolidayMultiplier
	}
	total := base.Mul(decimal.NewFromInt(int64(multiplier))).Round(2)

	return HoursResult{BaseHours: base, Multiplier: multiplier, TotalHours: total}, nil
}

// LeaveDays converts credited hours into leave-day equivalents.
// 12 hours at the default divisor of 6 is 2.00 days.
func (c Calculator) LeaveDays(totalHours decimal.Decimal) decimal.Decimal {
	return totalHours.Div(c.Limits.HoursPerLeaveDay).Round(2)
}
