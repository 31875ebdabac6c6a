/*
validator.go - The ordered validation pipeline

PURPOSE:
  Runs every business rule against a proposed claim and produces a single
  structured verdict. Rule outcomes are data: hard violations accumulate in
  Errors, cautions in Warnings, and everything computed along the way is
  returned in Calculated so callers persist a snapshot without recomputing.

PIPELINE ORDER (short-circuits noted):
  1. Resolve staff            - terminal ErrStaffNotFound
  2. Date window              - error
  3. End after start          - error; (2)/(3) errors return immediately
  4. Holiday lookup           - warning only
  5. Hours calculation        - terminal on session-cap / zero-duration
  6. Monthly quota            - block = error, Amber = warning
  7. Rest gap                 - warning only, never blocks
  8. Duplicate overlap        - error
  9. Leave-day conversion     - Leave claims only
*/
package overtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validator orchestrates the rule pipeline. Now is injectable for tests and
// defaults to time.Now.
type Validator struct {
	Staff      StaffDirectory
	Holidays   HolidayCalendar
	Calculator Calculator
	Quota      QuotaEngine
	RestGap    RestGapChecker
	Overlap    OverlapDetector
	Limits     Limits
	Now        func() time.Time
}

// Calculated carries every intermediate the pipeline produced, for the
// caller to persist as the claim's submission-time snapshot.
type Calculated struct {
	Staff       *StaffMember
	BaseHours   decimal.Decimal
	Multiplier  int
	TotalHours  decimal.Decimal
	Holiday     bool
	HolidayName string
	LeaveDays   decimal.Decimal
	Quota       QuotaResult
	RestGap     RestGapResult
}

type ValidationResult struct {
	Valid      bool
	Errors     []string
	Warnings   []string
	Calculated *Calculated
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate runs the full pipeline. It has no side effects beyond reads.
// Only a missing staff record or a collaborator failure comes back as a Go
// error; every business-rule outcome is carried on the result.
func (v Validator) Validate(ctx context.Context, req ClaimRequest, staffEmail string) (*ValidationResult, error) {
	staff, err := v.Staff.GetStaff(ctx, staffEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve staff: %w", err)
	}
	if staff == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaffNotFound, staffEmail)
	}

	res := &ValidationResult{Calculated: &Calculated{Staff: staff}}
	today := DateOf(v.now())

	// Date window: at most MaxFutureDays ahead, and no older than the first
	// day of the previous calendar month.
	if req.Date.After(today.AddDays(v.Limits.MaxFutureDays)) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("OT date %s is more than %d days in the future", req.Date, v.Limits.MaxFutureDays))
	}
	if req.Date.Before(today.StartOfPreviousMonth()) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("OT date %s is before %s; only the current and previous month may be claimed",
				req.Date, today.StartOfPreviousMonth()))
	}

	// Same-day ordering. The duration calculator tolerates wraparound, but
	// claims must not span midnight at the form level.
	if !req.End.After(req.Start) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("end time %s must be after start time %s", req.End, req.Start))
	}

	if len(res.Errors) > 0 {
		return res, nil
	}

	holiday, err := v.Holidays.HolidayDetails(ctx, req.Date)
	if err != nil {
		return nil, fmt.Errorf("holiday lookup: %w", err)
	}
	if holiday != nil {
		res.Calculated.Holiday = true
		res.Calculated.HolidayName = holiday.Name
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s is a public holiday (%s); a %dx multiplier applies",
				req.Date, holiday.Name, v.Limits.HolidayMultiplier))
	}

	hours, err := v.Calculator.Hours(req.Start, req.End, holiday != nil)
	if err != nil {
		if errors.Is(err, ErrSessionTooLong) || errors.Is(err, ErrZeroDuration) {
			res.Errors = append(res.Errors, err.Error())
			return res, nil
		}
		return nil, err
	}
	res.Calculated.BaseHours = hours.BaseHours
	res.Calculated.Multiplier = hours.Multiplier
	res.Calculated.TotalHours = hours.TotalHours

	quota, err := v.Quota.Check(ctx, staffEmail, hours.TotalHours, req.Date.MonthKey())
	if err != nil {
		return nil, err
	}
	res.Calculated.Quota = quota
	if !quota.CanApply {
		res.Errors = append(res.Errors,
			fmt.Sprintf("monthly quota exceeded: %s approved + %s requested = %s hours, limit is %s",
				quota.CurrentHours, hours.TotalHours, quota.ProjectedHours, v.Limits.MaxOTHours))
	} else if quota.Status == LightAmber {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("approaching monthly quota: %s of %s hours after this claim",
				quota.ProjectedHours, v.Limits.MaxOTHours))
	}

	gap, err := v.RestGap.Check(ctx, staffEmail, req.Start.On(req.Date))
	if err != nil {
		return nil, err
	}
	res.Calculated.RestGap = gap
	if !gap.Valid {
		if gap.LastClockOut == nil {
			res.Warnings = append(res.Warnings,
				"no prior clock-out found; rest gap could not be verified")
		} else {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("only %s hours of rest since last clock-out; %s hours recommended",
					gap.GapHours, v.Limits.MinRestGapHours))
		}
	}

	overlap, err := v.Overlap.Check(ctx, staffEmail, req.Date, req.Start, req.End, req.ExcludeID)
	if err != nil {
		return nil, err
	}
	if overlap.IsDuplicate {
		for _, c := range overlap.Conflicts {
			res.Errors = append(res.Errors,
				fmt.Sprintf("overlaps existing claim %s (%s %s-%s, %s)",
					c.ID, c.Date, c.StartTime, c.EndTime, c.Status))
		}
	}

	if req.Type == ClaimLeave {
		res.Calculated.LeaveDays = v.Calculator.LeaveDays(hours.TotalHours)
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}
