package linkaccount

import (
	"context"
	"log/slog"

	"anomonus-bot/internal/stories/registration"
	"anomonus-bot/internal/telegram/flows"
	"anomonus-bot/internal/telegram/messages"
	"anomonus-bot/internal/telegram/states"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Input identifies who wrote and where to answer.
type Input struct {
	UserID   int64
	ChatID   int64
	Username string
}

// Handler runs the hash validation protocol:
// AwaitingHash -> Validating -> Linked. A user becomes Linked only after the
// website accepted the link and the hash is stored locally.
type Handler struct {
	bot          botApi
	stateManager stateManager
	authority    authority
	links        linkService
	tiers        tierService
	purchaser    purchaser
	logger       *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	authority authority,
	links linkService,
	tiers tierService,
	purchaser purchaser,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		authority:    authority,
		links:        links,
		tiers:        tiers,
		purchaser:    purchaser,
		logger:       logger,
	}
}

// Prompt asks an unlinked user for the registration hash.
func (h *Handler) Prompt(in Input) error {
	h.stateManager.SetState(in.UserID, states.AwaitingHash, &flows.LinkFlowData{Username: in.Username})
	return h.send(in.ChatID, messages.StartAskHash, nil)
}

// HandleHash treats free text from an AwaitingHash user as a hash candidate.
func (h *Handler) HandleHash(ctx context.Context, in Input, text string) error {
	pendingTier := ""
	if data, err := h.stateManager.GetLinkData(in.UserID); err == nil {
		pendingTier = data.PendingTierID
	}

	hash, err := registration.NormalizeHash(text)
	if err != nil {
		h.awaitHash(ctx, in, pendingTier)
		return h.send(in.ChatID, messages.InvalidHashFormat, nil)
	}

	return h.validate(ctx, in, hash, pendingTier)
}

// HandleStartArgs handles /start {tierId}_{hash}. The tier and the hash format
// are checked locally before any remote call.
func (h *Handler) HandleStartArgs(ctx context.Context, in Input, args string) error {
	sa, err := registration.ParseStartArgs(args)
	if err != nil {
		h.logger.Info("Malformed start argument", slog.Int64("user_id", in.UserID), slog.Any("error", err))
		h.awaitHash(ctx, in, "")
		return h.send(in.ChatID, messages.InvalidStartArgs, nil)
	}

	if sa.TierID != "" {
		if _, err := h.tiers.Get(sa.TierID); err != nil {
			h.logger.Info("Start link with unknown tier", slog.Int64("user_id", in.UserID), slog.String("tier", sa.TierID))
			h.awaitHash(ctx, in, "")
			return h.send(in.ChatID, messages.UnknownTier, nil)
		}
	}

	hash, err := registration.NormalizeHash(sa.Hash)
	if err != nil {
		h.awaitHash(ctx, in, sa.TierID)
		return h.send(in.ChatID, messages.InvalidHashFormat, nil)
	}

	if cached, ok, err := h.links.Hash(ctx, in.UserID); err == nil && ok && cached == hash {
		h.stateManager.SetState(in.UserID, states.Linked, nil)
		if sa.TierID == "" {
			return h.send(in.ChatID, messages.Welcome, messages.MainKeyboard())
		}
		return h.purchaser.InitiatePurchase(ctx, in.UserID, in.ChatID, sa.TierID)
	}

	return h.validate(ctx, in, hash, sa.TierID)
}

func (h *Handler) validate(ctx context.Context, in Input, hash, pendingTier string) error {
	if !h.stateManager.BeginValidation(in.UserID) {
		return h.send(in.ChatID, messages.StillChecking, nil)
	}

	linked := false
	defer func() {
		if !linked {
			h.awaitHash(ctx, in, pendingTier)
		}
	}()

	res := h.authority.ValidateHash(ctx, hash)
	if !res.Valid {
		return h.send(in.ChatID, messages.HashCheckMessage(res.Message), nil)
	}

	if res.AccountRef == "" {
		h.logger.Warn("Valid hash without account reference", slog.Int64("user_id", in.UserID))
		return h.send(in.ChatID, messages.LinkNoAccount, nil)
	}

	if !h.authority.LinkIdentity(ctx, in.UserID, in.Username, res.AccountRef) {
		return h.send(in.ChatID, messages.LinkFailed, nil)
	}

	if err := h.links.Save(ctx, in.UserID, hash); err != nil {
		h.logger.Error("Failed to persist link", slog.Int64("user_id", in.UserID), slog.Any("error", err))
		return h.send(in.ChatID, messages.LinkFailed, nil)
	}

	linked = true
	h.stateManager.Clear(in.UserID)
	h.stateManager.SetState(in.UserID, states.Linked, nil)

	h.logger.Info("Account linked", slog.Int64("user_id", in.UserID), slog.String("account_ref", res.AccountRef))

	if err := h.send(in.ChatID, messages.LinkSucceeded, messages.MainKeyboard()); err != nil {
		return err
	}

	if pendingTier != "" {
		return h.purchaser.InitiatePurchase(ctx, in.UserID, in.ChatID, pendingTier)
	}
	return nil
}

// awaitHash puts the user back to hash entry after a failed attempt. A user
// with a cached link stays Linked: a bad /start argument or a rejected new
// hash never unlinks anyone.
func (h *Handler) awaitHash(ctx context.Context, in Input, pendingTier string) {
	if _, ok, err := h.links.Hash(ctx, in.UserID); err == nil && ok {
		h.stateManager.SetState(in.UserID, states.Linked, nil)
		return
	}
	h.stateManager.SetState(in.UserID, states.AwaitingHash, &flows.LinkFlowData{
		PendingTierID: pendingTier,
		Username:      in.Username,
	})
}

func (h *Handler) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := h.bot.Send(msg)
	return err
}
