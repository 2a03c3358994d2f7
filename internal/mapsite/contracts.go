package mapsite

import (
	"context"

	mapsiteAPI "anomonus-bot/internal/infra/mapsite"
)

type Client interface {
	GetSubscription(ctx context.Context, userID int64) (*mapsiteAPI.SubscriptionStatus, error)
	GetUserByHash(ctx context.Context, hash string) (*mapsiteAPI.UserByHash, error)
	LinkAccount(ctx context.Context, req mapsiteAPI.LinkRequest) error
	Activate(ctx context.Context, req mapsiteAPI.ActivateRequest) error
}
