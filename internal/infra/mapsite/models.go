package mapsite

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a 404 from the website. It carries meaning (unknown hash,
	// unknown user) and is never folded into ErrTransport.
	ErrNotFound = errors.New("mapsite: not found")
	// ErrTransport covers timeouts, connection errors, unexpected statuses and
	// undecodable bodies.
	ErrTransport = errors.New("mapsite: transport failure")
)

// SubscriptionStatus is the body of GET /api/subscription/{platform}/{id}.
type SubscriptionStatus struct {
	IsActive   bool
	IsLifetime bool
	// ExpiresAt is epoch milliseconds, nil when absent or null.
	ExpiresAt *int64
}

// UserByHash is the body of GET /api/users/by-hash/{hash}.
type UserByHash struct {
	// UserID is the website account reference. The website sends it either
	// as a string or as a number; both are kept in their textual form.
	UserID string
	Hash   string
}

type LinkRequest struct {
	StartParam string
	UserID     int64
	Username   string
}

type ActivateRequest struct {
	UserID           int64
	DurationDays     int
	Hash             string
	SubscriptionType string
	IdempotencyKey   string
}

// SchemaError is a typed parse failure of a response body.
type SchemaError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("mapsite %s: decode body: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("mapsite %s: field %q: %v", e.Endpoint, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
