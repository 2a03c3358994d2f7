package reconcile

import (
	"context"
	"time"
)

type (
	Storage interface {
		// CreateActivationFailure is a no-op for an already recorded charge.
		CreateActivationFailure(ctx context.Context, failure Failure) error
		ListActivationFailures(ctx context.Context, criteria ListCriteria) ([]*Failure, error)
		MarkActivationFailuresReported(ctx context.Context, chargeIDs []string, at time.Time) error
	}
)
