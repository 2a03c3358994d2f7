package telegram

import (
	"context"
	"log/slog"
	"strings"

	"anomonus-bot/internal/telegram/flows/buysub"
	"anomonus-bot/internal/telegram/flows/linkaccount"
	"anomonus-bot/internal/telegram/messages"
	"anomonus-bot/internal/telegram/states"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Links are the external pages behind /terms and /paysupport.
type Links struct {
	TermsURL      string
	PaySupportURL string
	SupportURL    string
}

type Router struct {
	bot          botApi
	stateManager stateManager
	links        linkService
	cfg          Links
	logger       *slog.Logger

	// Handlers
	linkFlow       linkFlow
	purchaseFlow   purchaseFlow
	activationFlow activationFlow
}

func NewRouter(
	bot botApi,
	stateManager stateManager,
	links linkService,
	linkFlow linkFlow,
	purchaseFlow purchaseFlow,
	activationFlow activationFlow,
	cfg Links,
	logger *slog.Logger,
) *Router {
	return &Router{
		bot:            bot,
		stateManager:   stateManager,
		links:          links,
		linkFlow:       linkFlow,
		purchaseFlow:   purchaseFlow,
		activationFlow: activationFlow,
		cfg:            cfg,
		logger:         logger,
	}
}

func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) error {
	telegramID := extractUserID(update)
	if telegramID == 0 {
		return nil
	}

	// Payment updates are handled regardless of the conversation state.
	if update.PreCheckoutQuery != nil {
		return r.purchaseFlow.HandlePreCheckout(ctx, update.PreCheckoutQuery)
	}
	if update.Message != nil && update.Message.SuccessfulPayment != nil {
		return r.activationFlow.HandleSuccessfulPayment(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}

	if update.Message.IsCommand() {
		return r.handleCommand(ctx, update.Message)
	}

	return r.handleText(ctx, update.Message)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	in := inputOf(msg)

	switch msg.Command() {
	case "start":
		if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
			return r.linkFlow.HandleStartArgs(ctx, in, args)
		}
		if r.resolveState(ctx, in) == states.Linked {
			return r.send(in.ChatID, messages.Welcome, messages.MainKeyboard())
		}
		return r.linkFlow.Prompt(in)
	case "terms":
		return r.send(in.ChatID, messages.Terms, messages.URLKeyboard(messages.ButtonTerms, r.cfg.TermsURL))
	case "paysupport":
		return r.send(in.ChatID, messages.PaySupport, messages.PaySupportKeyboard(r.cfg.PaySupportURL, r.cfg.SupportURL))
	default:
		return r.handleText(ctx, msg)
	}
}

func (r *Router) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	in := inputOf(msg)
	text := strings.TrimSpace(msg.Text)

	switch r.resolveState(ctx, in) {
	case states.Linked:
		switch text {
		case messages.ButtonBuySubscription:
			return r.purchaseFlow.ShowMenu(ctx, in.UserID, in.ChatID)
		case messages.ButtonAboutUs:
			return r.send(in.ChatID, messages.AboutUs, messages.MainKeyboard())
		case messages.ButtonHowToUseMap:
			return r.send(in.ChatID, messages.HowToUseMap, messages.MainKeyboard())
		default:
			return r.send(in.ChatID, messages.UseButtons, messages.MainKeyboard())
		}
	default:
		if text == messages.ButtonBuySubscription || msg.IsCommand() {
			return r.send(in.ChatID, messages.NotLinked, nil)
		}
		if text == "" {
			return r.send(in.ChatID, messages.EnterHashPrompt, nil)
		}
		return r.linkFlow.HandleHash(ctx, in, text)
	}
}

func (r *Router) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if !strings.HasPrefix(cq.Data, buysub.CallbackPrefix) {
		_, _ = r.bot.Request(tgbotapi.NewCallback(cq.ID, messages.Processing))
		return nil
	}

	in := linkaccount.Input{UserID: cq.From.ID, ChatID: cq.From.ID, Username: cq.From.UserName}
	if cq.Message != nil && cq.Message.Chat != nil {
		in.ChatID = cq.Message.Chat.ID
	}

	if r.resolveState(ctx, in) != states.Linked {
		_, _ = r.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
		return r.send(in.ChatID, messages.NotLinked, nil)
	}

	return r.purchaseFlow.HandleTierCallback(ctx, cq)
}

// resolveState trusts Linked and Validating as held in memory. Anything else
// is checked against the link cache, so a cached user is always Linked.
func (r *Router) resolveState(ctx context.Context, in linkaccount.Input) states.State {
	state := r.stateManager.GetState(in.UserID)
	if state == states.Linked || state == states.Validating {
		return state
	}

	linked, err := r.links.IsLinked(ctx, in.UserID)
	if err != nil {
		r.logger.Error("Failed to read link cache", slog.Int64("user_id", in.UserID), slog.Any("error", err))
		return states.AwaitingHash
	}

	if linked {
		r.stateManager.SetState(in.UserID, states.Linked, nil)
		return states.Linked
	}
	return states.AwaitingHash
}

func (r *Router) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func extractUserID(update *tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.PreCheckoutQuery != nil && update.PreCheckoutQuery.From != nil:
		return update.PreCheckoutQuery.From.ID
	}
	return 0
}

func inputOf(msg *tgbotapi.Message) linkaccount.Input {
	in := linkaccount.Input{UserID: msg.From.ID, ChatID: msg.From.ID, Username: msg.From.UserName}
	if msg.Chat != nil {
		in.ChatID = msg.Chat.ID
	}
	return in
}

// SetupBotCommands registers the command menu.
func (r *Router) SetupBotCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: messages.CommandStart},
		{Command: "terms", Description: messages.CommandTerms},
		{Command: "paysupport", Description: messages.CommandPaySupport},
	}

	if _, err := r.bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return err
	}
	return nil
}
