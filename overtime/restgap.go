package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REST-GAP CHECKER
// =============================================================================

// RestGapChecker measures the rest between a staff member's last clock-out
// and a proposed OT start. It never blocks; callers demote a short or
// unknown gap to a warning.
type RestGapChecker struct {
	Attendance AttendanceStore
	Limits     Limits
}

type RestGapResult struct {
	Valid        bool
	GapHours     decimal.Decimal
	LastClockOut *time.Time
}

// Check finds the closest qualifying predecessor: the latest clock-out that
// is still strictly before otStart, among records that have one. No such
// record means the policy data is absent, which is reported as invalid with
// a zero gap rather than a pass.
func (r RestGapChecker) Check(ctx context.Context, staffEmail string, otStart time.Time) (RestGapResult, error) {
	records, err := r.Attendance.ListAttendance(ctx, staffEmail, otStart)
	if err != nil {
		return RestGapResult{}, fmt.Errorf("rest gap check: %w", err)
	}

	var last time.Time
	for _, rec := range records {
		if rec.ClockOut.IsZero() || !rec.ClockOut.Before(otStart) {
			continue
		}
		if rec.ClockOut.After(last) {
			last = rec.ClockOut
		}
	}
	if last.IsZero() {
		return RestGapResult{Valid: false, GapHours: decimal.Zero}, nil
	}

	gap := decimal.NewFromFloat(otStart.Sub(last).Hours()).Round(2)
	return RestGapResult{
		Valid:        gap.GreaterThanOrEqual(r.Limits.MinRestGapHours),
		GapHours:     gap,
		LastClockOut: &last,
	}, nil
}
