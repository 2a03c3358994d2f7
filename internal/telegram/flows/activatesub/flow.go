package activatesub

import (
	"context"
	"log/slog"

	"anomonus-bot/internal/invoice"
	"anomonus-bot/internal/mapsite"
	"anomonus-bot/internal/stories/reconcile"
	"anomonus-bot/internal/telegram/messages"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler turns a completed payment into a subscription activation request.
// The payment is already captured, so every path ends with a message to the
// user and failed activations are recorded for manual reconciliation.
type Handler struct {
	bot       botApi
	authority activator
	links     linkService
	tiers     tierService
	failures  failureRecorder
	logger    *slog.Logger
}

func NewHandler(
	bot botApi,
	authority activator,
	links linkService,
	tiers tierService,
	failures failureRecorder,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		authority: authority,
		links:     links,
		tiers:     tiers,
		failures:  failures,
		logger:    logger,
	}
}

func (h *Handler) HandleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) error {
	if msg == nil || msg.SuccessfulPayment == nil || msg.From == nil {
		return nil
	}

	p := msg.SuccessfulPayment
	userID := msg.From.ID
	chatID := msg.Chat.ID

	logger := h.logger.With(
		slog.Int64("user_id", userID),
		slog.String("charge_id", p.TelegramPaymentChargeID),
		slog.Int("amount", p.TotalAmount),
		slog.String("currency", p.Currency))
	logger.Info("Payment received")

	payload, err := invoice.Decode(p.InvoicePayload)
	if err != nil {
		logger.Error("Undecodable invoice payload", slog.String("payload", p.InvoicePayload), slog.Any("error", err))
		paymentsTotal.WithLabelValues(tierUnknown, outcomeBadPayload).Inc()
		h.record(ctx, logger, reconcile.Failure{
			ChargeID:    p.TelegramPaymentChargeID,
			TelegramID:  userID,
			AmountStars: p.TotalAmount,
			Reason:      reconcile.ReasonBadPayload,
		})
		return h.send(chatID, messages.PaymentUnmatched)
	}

	tier, err := h.tiers.Get(payload.TierID)
	if err != nil {
		logger.Error("Payment for unknown tier", slog.String("tier", payload.TierID))
		paymentsTotal.WithLabelValues(tierUnknown, outcomeUnknownTier).Inc()
		h.record(ctx, logger, reconcile.Failure{
			ChargeID:    p.TelegramPaymentChargeID,
			TelegramID:  userID,
			Hash:        payload.Hash,
			TierID:      payload.TierID,
			AmountStars: p.TotalAmount,
			Reason:      reconcile.ReasonUnknownTier,
		})
		return h.send(chatID, messages.PaymentUnmatched)
	}

	hash := h.resolveHash(ctx, logger, userID, payload.Hash)

	res := h.authority.ActivateSubscription(ctx, mapsite.ActivationRequest{
		UserID:       userID,
		Hash:         hash,
		DurationDays: tier.DurationDays,
		TierID:       tier.ID,
		ChargeID:     p.TelegramPaymentChargeID,
	})

	if res.Activated {
		paymentsTotal.WithLabelValues(tier.ID, outcomeActivated).Inc()
		return h.send(chatID, messages.PaymentActivated)
	}

	reason, outcome := reconcile.ReasonRemoteFailure, outcomeFailed
	if res.UnknownUser() {
		reason, outcome = reconcile.ReasonUnknownUser, outcomeUnknownUser
	}
	paymentsTotal.WithLabelValues(tier.ID, outcome).Inc()

	h.record(ctx, logger, reconcile.Failure{
		ChargeID:     p.TelegramPaymentChargeID,
		TelegramID:   userID,
		Hash:         hash,
		TierID:       tier.ID,
		DurationDays: tier.DurationDays,
		AmountStars:  p.TotalAmount,
		Reason:       reason,
	})

	return h.send(chatID, messages.PaymentCaveat)
}

// resolveHash prefers the hash carried by the invoice and falls back to the
// cache without one. The payload hash is cached only for users with no link
// yet, so an old invoice never replaces a newer link.
func (h *Handler) resolveHash(ctx context.Context, logger *slog.Logger, userID int64, fromPayload string) string {
	if fromPayload == "" {
		cached, _, err := h.links.Hash(ctx, userID)
		if err != nil {
			logger.Warn("Failed to read cached hash", slog.Any("error", err))
		}
		return cached
	}

	if _, err := h.links.SaveIfAbsent(ctx, userID, fromPayload); err != nil {
		logger.Warn("Failed to store hash from payment", slog.Any("error", err))
	}
	return fromPayload
}

func (h *Handler) record(ctx context.Context, logger *slog.Logger, f reconcile.Failure) {
	if f.ChargeID == "" {
		logger.Error("Activation failure without charge id, not recorded", slog.String("reason", string(f.Reason)))
		return
	}
	if err := h.failures.Record(ctx, f); err != nil {
		logger.Error("Failed to record activation failure", slog.Any("error", err))
	}
}

func (h *Handler) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = messages.MainKeyboard()
	_, err := h.bot.Send(msg)
	return err
}
