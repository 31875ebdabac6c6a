// Package notify provides Notifier implementations. Actual mail delivery is
// an external collaborator; the engine only needs a best-effort sink.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/overtime-engine/overtime"
)

// Log writes structured notification records instead of sending mail.
// Useful in dev and as the default sink when no mailer is configured.
type Log struct {
	Logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{Logger: logger}
}

func (l *Log) NotifySubmitted(_ context.Context, claim *overtime.OTClaim, approverEmail string) error {
	l.Logger.Info("claim submitted, approver notified",
		zap.String("claim", claim.ID),
		zap.String("staff", claim.StaffEmail),
		zap.String("approver", approverEmail),
		zap.String("date", claim.Date.String()),
		zap.String("hours", claim.TotalHours.String()),
	)
	return nil
}

func (l *Log) NotifyDecision(_ context.Context, claim *overtime.OTClaim, decision overtime.Decision, remarks string) error {
	l.Logger.Info("claim decided, staff notified",
		zap.String("claim", claim.ID),
		zap.String("staff", claim.StaffEmail),
		zap.String("decision", string(decision)),
		zap.String("remarks", remarks),
	)
	return nil
}
