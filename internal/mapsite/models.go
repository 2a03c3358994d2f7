package mapsite

// Outcome buckets every remote call.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailure  Outcome = "failure"
)

const (
	MessageHashValid    = "Hash validated successfully"
	MessageHashNotFound = "This hash is either incorrect or non-existing"
	MessageHashRetry    = "Error validating hash. Please try again later."
)

type HashValidation struct {
	Valid bool
	// AccountRef is the website user id; may be empty even when Valid.
	AccountRef string
	Hash       string
	Message    string
	Outcome    Outcome
}

type ActivationRequest struct {
	UserID       int64
	Hash         string
	DurationDays int
	TierID       string
	// ChargeID is the payment charge id; it seeds the idempotency key so a
	// redelivered payment event activates at most once on the website.
	ChargeID string
}

type ActivationResult struct {
	Activated bool
	Outcome   Outcome
}

// UnknownUser reports a 404 from activation: the chat user has not been
// registered on the website yet.
func (r ActivationResult) UnknownUser() bool {
	return r.Outcome == OutcomeNotFound
}
