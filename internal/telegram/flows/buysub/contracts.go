package buysub

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anomonus-bot/internal/stories/tiers"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	subscriptionChecker interface {
		CheckSubscription(ctx context.Context, userID int64) bool
	}

	linkService interface {
		Hash(ctx context.Context, telegramID int64) (string, bool, error)
	}

	tierService interface {
		Get(id string) (tiers.Tier, error)
		List() []tiers.Tier
		Single() (tiers.Tier, bool)
	}
)
