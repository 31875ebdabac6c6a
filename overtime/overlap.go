package overtime

import (
	"context"
	"fmt"
)

// =============================================================================
// DUPLICATE / OVERLAP DETECTOR
// =============================================================================

// OverlapDetector scans a staff member's existing claims on a calendar day
// for time-range conflicts with a proposed session. Rejected claims never
// conflict; excludeID supports edit-in-place.
type OverlapDetector struct {
	Claims ClaimStore
}

type OverlapResult struct {
	IsDuplicate bool
	Conflicts   []OTClaim
}

// Check treats ranges as half-open [start, end): two ranges conflict iff
// newStart < existingEnd && newEnd > existingStart, so sessions that merely
// touch at a boundary do not conflict.
func (o OverlapDetector) Check(ctx context.Context, staffEmail string, date Date, start, end TimeOfDay, excludeID string) (OverlapResult, error) {
	existing, err := o.Claims.ListClaims(ctx, ClaimFilter{
		StaffEmail:    staffEmail,
		Date:          &date,
		ExcludeStatus: StatusRejected,
	})
	if err != nil {
		return OverlapResult{}, fmt.Errorf("overlap check: %w", err)
	}

	var conflicts []OTClaim
	for _, c := range existing {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if start.Before(c.EndTime) && end.After(c.StartTime) {
			conflicts = append(conflicts, c)
		}
	}
	return OverlapResult{IsDuplicate: len(conflicts) > 0, Conflicts: conflicts}, nil
}
