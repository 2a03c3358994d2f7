package failurereport

import (
	"context"

	"anomonus-bot/internal/stories/reconcile"
)

type (
	// Failures is the journal of payments that were not activated.
	Failures interface {
		Unreported(ctx context.Context, limit int) ([]*reconcile.Failure, error)
		MarkReported(ctx context.Context, chargeIDs []string) error
	}

	TelegramNotifier interface {
		SendMessage(chatID int64, text string) error
	}
)
