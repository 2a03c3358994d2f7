package links

import "context"

type (
	Storage interface {
		// GetLink returns nil when the user has no link.
		GetLink(ctx context.Context, telegramID int64) (*Link, error)
		UpsertLink(ctx context.Context, link Link) error
		CountLinks(ctx context.Context) (int, error)
	}
)
