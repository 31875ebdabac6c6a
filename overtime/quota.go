package overtime

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY QUOTA ENGINE
// =============================================================================

// QuotaEngine classifies a prospective addition of hours against the rolling
// monthly cap. The same check runs pre-submission and again at approval
// time, since other claims may have been approved in between.
type QuotaEngine struct {
	Claims ClaimStore
	Limits Limits
}

type QuotaResult struct {
	CanApply       bool
	Status         TrafficLight
	CurrentHours   decimal.Decimal
	ProjectedHours decimal.Decimal
	RemainingHours decimal.Decimal
}

// Check sums the staff member's approved hours for the month and classifies
// current+additional. Projected strictly above the cap blocks (Red); landing
// exactly on the cap is allowed. At or above the warning threshold is Amber.
func (q QuotaEngine) Check(ctx context.Context, staffEmail string, additional decimal.Decimal, monthKey string) (QuotaResult, error) {
	approved, err := q.Claims.ListClaims(ctx, ClaimFilter{
		StaffEmail: staffEmail,
		Month:      monthKey,
		Status:     StatusApproved,
	})
	if err != nil {
		return QuotaResult{}, fmt.Errorf("quota check: %w", err)
	}

	current := decimal.Zero
	for _, c := range approved {
		current = current.Add(c.TotalHours)
	}
	projected := current.Add(additional)

	remaining := q.Limits.MaxOTHours.Sub(projected)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	res := QuotaResult{
		CurrentHours:   current,
		ProjectedHours: projected,
		RemainingHours: remaining,
	}

	switch {
	case projected.GreaterThan(q.Limits.MaxOTHours):
		res.CanApply = false
		res.Status = LightRed
	case projected.GreaterThanOrEqual(q.Limits.WarningThreshold):
		res.CanApply = true
		res.Status = LightAmber
	default:
		res.CanApply = true
		res.Status = LightGreen
	}
	return res, nil
}

// Classify applies the same thresholds to a standalone total, for summary
// traffic lights.
func (q QuotaEngine) Classify(total decimal.Decimal) TrafficLight {
	switch {
	case total.GreaterThanOrEqual(q.Limits.MaxOTHours):
		return LightRed
	case total.GreaterThanOrEqual(q.Limits.WarningThreshold):
		return LightAmber
	default:
		return LightGreen
	}
}
