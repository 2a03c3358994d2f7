package flows

// LinkFlowData is kept while a user goes through account linking.
type LinkFlowData struct {
	// PendingTierID is the plan to offer right after linking, taken from a
	// composite /start argument.
	PendingTierID string
	Username      string
}
