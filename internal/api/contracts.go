package api

import "context"

type subscriptionChecker interface {
	CheckSubscription(ctx context.Context, userID int64) bool
}

type subscriberService interface {
	Add(ctx context.Context, telegramID int64) (bool, error)
	Remove(ctx context.Context, telegramID int64) (bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}
