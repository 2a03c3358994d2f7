package linkaccount

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anomonus-bot/internal/mapsite"
	"anomonus-bot/internal/stories/tiers"
	"anomonus-bot/internal/telegram/flows"
	"anomonus-bot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	stateManager interface {
		SetState(userID int64, state states.State, data any)
		BeginValidation(userID int64) bool
		GetLinkData(userID int64) (*flows.LinkFlowData, error)
		Clear(userID int64)
	}

	authority interface {
		ValidateHash(ctx context.Context, hash string) mapsite.HashValidation
		LinkIdentity(ctx context.Context, userID int64, username, accountRef string) bool
	}

	linkService interface {
		Hash(ctx context.Context, telegramID int64) (string, bool, error)
		Save(ctx context.Context, telegramID int64, hash string) error
	}

	tierService interface {
		Get(id string) (tiers.Tier, error)
	}

	purchaser interface {
		InitiatePurchase(ctx context.Context, userID, chatID int64, tierID string) error
	}
)
