package buysub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"anomonus-bot/internal/stories/tiers"
	"anomonus-bot/internal/telegram/messages"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  func(tgbotapi.Chattable) error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.sendErr != nil {
		if err := b.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) texts() []string {
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) invoices() []tgbotapi.InvoiceConfig {
	var out []tgbotapi.InvoiceConfig
	for _, c := range b.sent {
		if inv, ok := c.(tgbotapi.InvoiceConfig); ok {
			out = append(out, inv)
		}
	}
	return out
}

type fakeChecker struct {
	active bool
	calls  int
}

func (f *fakeChecker) CheckSubscription(context.Context, int64) bool {
	f.calls++
	return f.active
}

type fakeLinks map[int64]string

func (f fakeLinks) Hash(_ context.Context, id int64) (string, bool, error) {
	h, ok := f[id]
	return h, ok, nil
}

const testHash = "ABCDEFGHIJKL123456789012"

func defaultConfig() Config {
	return Config{
		Currency:    "XTR",
		Title:       "Anomonus Bot Subscription",
		Description: "Premium map features",
		StarsURL:    "https://t.me/anomonuschannel",
	}
}

func newTestHandler(t *testing.T, bot *fakeBot, checker *fakeChecker, cfg Config) *Handler {
	t.Helper()
	ts, err := tiers.NewService("")
	require.NoError(t, err)
	return NewHandler(bot, checker, fakeLinks{777: testHash}, ts, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInitiatePurchaseSendsInvoice(t *testing.T) {
	bot := &fakeBot{}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	require.NoError(t, h.InitiatePurchase(context.Background(), 777, 777, "1month"))

	invs := bot.invoices()
	require.Len(t, invs, 1)
	inv := invs[0]
	assert.Equal(t, "XTR", inv.Currency)
	assert.Empty(t, inv.ProviderToken)
	assert.Equal(t, testHash+"__1month", inv.Payload)
	require.Len(t, inv.Prices, 1)
	assert.Equal(t, 115, inv.Prices[0].Amount)
	assert.Contains(t, inv.Prices[0].Label, "1 Month")
	assert.NotNil(t, inv.SuggestedTipAmounts)

	assert.Equal(t, []string{messages.NeedStars}, bot.texts())
}

func TestInitiatePurchaseTwiceWhenActive(t *testing.T) {
	bot := &fakeBot{}
	checker := &fakeChecker{active: true}
	h := newTestHandler(t, bot, checker, defaultConfig())

	require.NoError(t, h.InitiatePurchase(context.Background(), 777, 777, "1month"))
	require.NoError(t, h.InitiatePurchase(context.Background(), 777, 777, "1month"))

	assert.Empty(t, bot.invoices())
	assert.Equal(t, []string{messages.AlreadySubscribed, messages.AlreadySubscribed}, bot.texts())
	assert.Equal(t, 2, checker.calls)
}

func TestInitiatePurchaseUnknownTier(t *testing.T) {
	bot := &fakeBot{}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	require.NoError(t, h.InitiatePurchase(context.Background(), 777, 777, "2weeks"))
	assert.Empty(t, bot.invoices())
	assert.Equal(t, []string{messages.UnknownTier}, bot.texts())
}

func TestInitiatePurchaseWithoutLink(t *testing.T) {
	bot := &fakeBot{}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	require.NoError(t, h.InitiatePurchase(context.Background(), 1, 1, "1year"))
	invs := bot.invoices()
	require.Len(t, invs, 1)
	assert.Equal(t, "__1year", invs[0].Payload)
}

func TestInitiatePurchaseInvoiceFailure(t *testing.T) {
	bot := &fakeBot{sendErr: func(c tgbotapi.Chattable) error {
		if _, ok := c.(tgbotapi.InvoiceConfig); ok {
			return errors.New("telegram down")
		}
		return nil
	}}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	require.NoError(t, h.InitiatePurchase(context.Background(), 777, 777, "1month"))
	assert.Equal(t, []string{messages.InvoiceErrorCreating}, bot.texts())
}

func TestShowMenuListsTiers(t *testing.T) {
	bot := &fakeBot{}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	require.NoError(t, h.ShowMenu(context.Background(), 777, 777))
	require.Len(t, bot.sent, 1)

	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, messages.ChooseTier, msg.Text)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 4)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "tier:1month", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestShowMenuSingleTierGoesToInvoice(t *testing.T) {
	ts, err := tiers.Parse([]byte("tiers:\n  - id: basic\n    name: Basic\n    price_stars: 1\n    duration_days: 30\n"))
	require.NoError(t, err)

	bot := &fakeBot{}
	h := NewHandler(bot, &fakeChecker{}, fakeLinks{}, ts, defaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.ShowMenu(context.Background(), 5, 5))
	invs := bot.invoices()
	require.Len(t, invs, 1)
	assert.Equal(t, 1, invs[0].Prices[0].Amount)
}

func TestHandleTierCallback(t *testing.T) {
	bot := &fakeBot{}
	h := newTestHandler(t, bot, &fakeChecker{}, defaultConfig())

	cq := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 777},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 777}},
		Data:    "tier:3months",
	}
	require.NoError(t, h.HandleTierCallback(context.Background(), cq))

	require.Len(t, bot.requests, 1)
	invs := bot.invoices()
	require.Len(t, invs, 1)
	assert.Equal(t, 300, invs[0].Prices[0].Amount)
}

func TestHandlePreCheckout(t *testing.T) {
	tests := []struct {
		name    string
		verify  bool
		payload string
		amount  int
		wantOK  bool
	}{
		{name: "matching", verify: true, payload: testHash + "__1month", amount: 115, wantOK: true},
		{name: "amount mismatch rejected", verify: true, payload: testHash + "__1month", amount: 1, wantOK: false},
		{name: "bad payload rejected", verify: true, payload: "garbage", amount: 115, wantOK: false},
		{name: "mismatch approved when not verifying", verify: false, payload: "garbage", amount: 1, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.VerifyPreCheckout = tt.verify
			bot := &fakeBot{}
			h := newTestHandler(t, bot, &fakeChecker{}, cfg)

			err := h.HandlePreCheckout(context.Background(), &tgbotapi.PreCheckoutQuery{
				ID:             "pc1",
				From:           &tgbotapi.User{ID: 777},
				Currency:       "XTR",
				TotalAmount:    tt.amount,
				InvoicePayload: tt.payload,
			})
			require.NoError(t, err)
			require.Len(t, bot.requests, 1)

			answer := bot.requests[0].(tgbotapi.PreCheckoutConfig)
			assert.Equal(t, "pc1", answer.PreCheckoutQueryID)
			assert.Equal(t, tt.wantOK, answer.OK)
			if !tt.wantOK {
				assert.NotEmpty(t, answer.ErrorMessage)
			}
		})
	}
}
