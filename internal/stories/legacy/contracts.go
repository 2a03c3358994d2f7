package legacy

import "context"

type (
	Storage interface {
		AddSubscriber(ctx context.Context, telegramID int64) (bool, error)
		RemoveSubscriber(ctx context.Context, telegramID int64) (bool, error)
		HasSubscriber(ctx context.Context, telegramID int64) (bool, error)
		CountSubscribers(ctx context.Context) (int, error)
		ClearSubscribers(ctx context.Context) (int, error)
	}
)
