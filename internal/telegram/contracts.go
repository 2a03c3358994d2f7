package telegram

import (
	"context"

	"anomonus-bot/internal/telegram/flows/linkaccount"
	"anomonus-bot/internal/telegram/states"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type stateManager interface {
	GetState(userID int64) states.State
	SetState(userID int64, state states.State, data any)
}

type linkService interface {
	IsLinked(ctx context.Context, telegramID int64) (bool, error)
}

type linkFlow interface {
	Prompt(in linkaccount.Input) error
	HandleHash(ctx context.Context, in linkaccount.Input, text string) error
	HandleStartArgs(ctx context.Context, in linkaccount.Input, args string) error
}

type purchaseFlow interface {
	ShowMenu(ctx context.Context, userID, chatID int64) error
	HandleTierCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error
	HandlePreCheckout(ctx context.Context, q *tgbotapi.PreCheckoutQuery) error
}

type activationFlow interface {
	HandleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) error
}
