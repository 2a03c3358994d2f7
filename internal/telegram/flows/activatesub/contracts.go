package activatesub

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anomonus-bot/internal/mapsite"
	"anomonus-bot/internal/stories/reconcile"
	"anomonus-bot/internal/stories/tiers"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	activator interface {
		ActivateSubscription(ctx context.Context, req mapsite.ActivationRequest) mapsite.ActivationResult
	}

	linkService interface {
		Hash(ctx context.Context, telegramID int64) (string, bool, error)
		SaveIfAbsent(ctx context.Context, telegramID int64, hash string) (bool, error)
	}

	tierService interface {
		Get(id string) (tiers.Tier, error)
	}

	failureRecorder interface {
		Record(ctx context.Context, f reconcile.Failure) error
	}
)
