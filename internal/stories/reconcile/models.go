package reconcile

import "time"

// Failure is a paid invoice whose activation on the map website did not
// succeed. ChargeID is the payment provider's charge id and is unique.
type Failure struct {
	ChargeID     string
	TelegramID   int64
	Hash         string
	TierID       string
	DurationDays int
	AmountStars  int
	Reason       Reason
	CreatedAt    time.Time
	ReportedAt   *time.Time
}

type Reason string

const (
	ReasonUnknownUser   Reason = "unknown_user"
	ReasonRemoteFailure Reason = "remote_failure"
	ReasonBadPayload    Reason = "bad_payload"
	ReasonUnknownTier   Reason = "unknown_tier"
)

type ListCriteria struct {
	Unreported bool
	Limit      int
}
