package buysub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"anomonus-bot/internal/invoice"
	"anomonus-bot/internal/stories/tiers"
	"anomonus-bot/internal/telegram/messages"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// CallbackPrefix marks tier selection buttons.
const CallbackPrefix = "tier:"

type Config struct {
	Currency          string
	ProviderToken     string
	Title             string
	Description       string
	StarsURL          string
	VerifyPreCheckout bool
}

type Handler struct {
	bot          botApi
	subscription subscriptionChecker
	links        linkService
	tiers        tierService
	cfg          Config
	logger       *slog.Logger
}

func NewHandler(
	bot botApi,
	subscription subscriptionChecker,
	links linkService,
	tiers tierService,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	if cfg.Currency == "" {
		cfg.Currency = "XTR"
	}
	return &Handler{
		bot:          bot,
		subscription: subscription,
		links:        links,
		tiers:        tiers,
		cfg:          cfg,
		logger:       logger,
	}
}

// ShowMenu answers the "Buy subscription" button. A single-tier table goes
// straight to the invoice.
func (h *Handler) ShowMenu(ctx context.Context, userID, chatID int64) error {
	if t, ok := h.tiers.Single(); ok {
		return h.InitiatePurchase(ctx, userID, chatID, t.ID)
	}

	if h.subscription.CheckSubscription(ctx, userID) {
		return h.send(chatID, messages.AlreadySubscribed, messages.MainKeyboard())
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range h.tiers.List() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.TierButton(t.Name, t.PriceStars), CallbackPrefix+t.ID),
		))
	}

	return h.send(chatID, messages.ChooseTier, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// HandleTierCallback handles a tier button press.
func (h *Handler) HandleTierCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq == nil || cq.Message == nil || cq.From == nil {
		return nil
	}

	_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, messages.Processing))

	tierID := strings.TrimPrefix(cq.Data, CallbackPrefix)
	return h.InitiatePurchase(ctx, cq.From.ID, cq.Message.Chat.ID, tierID)
}

// InitiatePurchase sends one invoice for the tier unless the user is already
// subscribed. Calling it again for an active user only repeats the notice.
func (h *Handler) InitiatePurchase(ctx context.Context, userID, chatID int64, tierID string) error {
	if h.subscription.CheckSubscription(ctx, userID) {
		h.logger.Info("Purchase skipped, already subscribed", slog.Int64("user_id", userID))
		return h.send(chatID, messages.AlreadySubscribed, messages.MainKeyboard())
	}

	tier, err := h.tiers.Get(tierID)
	if err != nil {
		h.logger.Warn("Purchase for unknown tier", slog.Int64("user_id", userID), slog.String("tier", tierID))
		return h.send(chatID, messages.UnknownTier, nil)
	}

	hash, _, err := h.links.Hash(ctx, userID)
	if err != nil {
		// The payment path falls back to the cache again, an empty hash is fine here.
		h.logger.Warn("Failed to read link for invoice", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	if _, err := h.bot.Send(h.newInvoice(chatID, hash, tier)); err != nil {
		h.logger.Error("Failed to send invoice",
			slog.Int64("user_id", userID),
			slog.String("tier", tier.ID),
			slog.Any("error", err))
		return h.send(chatID, messages.InvoiceErrorCreating, messages.MainKeyboard())
	}

	h.logger.Info("Invoice sent",
		slog.Int64("user_id", userID),
		slog.String("tier", tier.ID),
		slog.Int("price_stars", tier.PriceStars))

	if h.cfg.StarsURL != "" {
		return h.send(chatID, messages.NeedStars, messages.URLKeyboard(messages.ButtonBuyStars, h.cfg.StarsURL))
	}
	return nil
}

func (h *Handler) newInvoice(chatID int64, hash string, tier tiers.Tier) tgbotapi.InvoiceConfig {
	title := h.cfg.Title
	if title == "" {
		title = tier.Name
	}
	description := tier.Name
	if h.cfg.Description != "" {
		description = fmt.Sprintf("%s: %s", tier.Name, h.cfg.Description)
	}

	inv := tgbotapi.NewInvoice(
		chatID,
		title,
		description,
		invoice.Encode(hash, tier.ID),
		h.cfg.ProviderToken,
		"subscription",
		h.cfg.Currency,
		[]tgbotapi.LabeledPrice{{Label: messages.InvoicePriceLabel(tier.Name), Amount: tier.PriceStars}},
	)
	// The Bot API rejects a null tip list.
	inv.SuggestedTipAmounts = []int{}
	return inv
}

// HandlePreCheckout answers the pre-checkout query. The payload, currency
// and amount are always cross-checked against the tier table; a mismatch is
// logged and only rejected when verification is enabled.
func (h *Handler) HandlePreCheckout(_ context.Context, q *tgbotapi.PreCheckoutQuery) error {
	if q == nil {
		return nil
	}

	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}

	if err := h.verifyPreCheckout(q); err != nil {
		var userID int64
		if q.From != nil {
			userID = q.From.ID
		}
		h.logger.Warn("Pre-checkout mismatch",
			slog.Int64("user_id", userID),
			slog.String("payload", q.InvoicePayload),
			slog.String("currency", q.Currency),
			slog.Int("amount", q.TotalAmount),
			slog.Bool("rejected", h.cfg.VerifyPreCheckout),
			slog.Any("error", err))

		if h.cfg.VerifyPreCheckout {
			answer.OK = false
			answer.ErrorMessage = messages.PreCheckoutRejected
		}
	}

	if _, err := h.bot.Request(answer); err != nil {
		return errors.Wrap(err, "answer pre-checkout query")
	}
	return nil
}

func (h *Handler) verifyPreCheckout(q *tgbotapi.PreCheckoutQuery) error {
	p, err := invoice.Decode(q.InvoicePayload)
	if err != nil {
		return err
	}
	tier, err := h.tiers.Get(p.TierID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(q.Currency, h.cfg.Currency) {
		return errors.Errorf("currency %q, want %q", q.Currency, h.cfg.Currency)
	}
	if q.TotalAmount != tier.PriceStars {
		return errors.Errorf("amount %d, want %d for tier %q", q.TotalAmount, tier.PriceStars, tier.ID)
	}
	return nil
}

func (h *Handler) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := h.bot.Send(msg)
	return err
}
