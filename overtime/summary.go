package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY SUMMARY AGGREGATOR
// =============================================================================

// Aggregator folds a staff member's approved claims for one month into the
// derived MonthlySummary. The summary is always a cache: recomputation
// overwrites the row in place, and an absent row is inserted.
type Aggregator struct {
	Claims    ClaimStore
	Summaries SummaryStore
	Quota     QuotaEngine
	Now       func() time.Time
}

// Recalculate rebuilds and upserts the (staff, month) summary row.
func (a Aggregator) Recalculate(ctx context.Context, staffEmail, monthKey string) (*MonthlySummary, error) {
	approved, err := a.Claims.ListClaims(ctx, ClaimFilter{
		StaffEmail: staffEmail,
		Month:      monthKey,
		Status:     StatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("recalculate summary: %w", err)
	}

	total, money, leave := decimal.Zero, decimal.Zero, decimal.Zero
	for _, c := range approved {
		total = total.Add(c.TotalHours)
		switch c.Type {
		case ClaimLeave:
			leave = leave.Add(c.TotalHours)
		default:
			money = money.Add(c.TotalHours)
		}
	}

	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	s := &MonthlySummary{
		StaffEmail:      staffEmail,
		Month:           monthKey,
		TotalOTHours:    total,
		MoneyClaimHours: money,
		LeaveClaimHours: leave,
		LeaveDaysEarned: leave.Div(a.Quota.Limits.HoursPerLeaveDay).Round(2),
		Status:          a.Quota.Classify(total),
		RecomputedAt:    now,
	}
	if err := a.Summaries.UpsertSummary(ctx, s); err != nil {
		return nil, fmt.Errorf("upsert summary: %w", err)
	}
	return s, nil
}
