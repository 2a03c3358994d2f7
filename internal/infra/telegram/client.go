package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

// ConnectConfig bounds the startup probe against the Bot API.
type ConnectConfig struct {
	MaxRetries  uint64
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	HTTPTimeout time.Duration
}

type Client struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	limiter     *rate.Limiter
	pollTimeout int
	updates     <-chan tgbotapi.Update

	// sendCtx bounds rate limiter waits. It is independent of polling so
	// replies still go out while updates drain on shutdown.
	sendCtx context.Context
	cancel  context.CancelFunc
}

// NewClient connects to the Bot API. Network failures are retried with
// exponential backoff up to cfg.MaxRetries; a rejected token fails at once.
func NewClient(ctx context.Context, token string, cfg ConnectConfig, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var bot *tgbotapi.BotAPI
	err := retry.Do(ctx, connectBackoff(cfg), func(ctx context.Context) error {
		var err error
		bot, err = tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		logger.Warn("Telegram API unreachable, retrying", slog.Any("error", err))
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	// Bot API allows about 30 messages per second.
	limiter := rate.NewLimiter(30, 1)

	c := &Client{
		api:         bot,
		logger:      logger,
		limiter:     limiter,
		pollTimeout: 60,
	}
	c.sendCtx, c.cancel = context.WithCancel(context.Background())

	logger.Info("Connected to telegram", slog.String("username", bot.Self.UserName))
	return c, nil
}

func connectBackoff(cfg ConnectConfig) retry.Backoff {
	base := cfg.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	b := retry.NewExponential(base)
	if cfg.MaxDelay > 0 {
		b = retry.WithCappedDuration(cfg.MaxDelay, b)
	}
	return retry.WithMaxRetries(cfg.MaxRetries, b)
}

// isPermanent reports Bot API answers that retrying cannot fix, such as an
// invalid token.
func isPermanent(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusNotFound
	}
	return false
}

// SetPollTimeout sets the long polling timeout in seconds.
func (c *Client) SetPollTimeout(seconds int) {
	if seconds > 0 {
		c.pollTimeout = seconds
	}
}

// Start begins long polling. Polling ends with Stop.
func (c *Client) Start(_ context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	u.AllowedUpdates = []string{"message", "callback_query", "pre_checkout_query"}

	c.updates = c.api.GetUpdatesChan(u)

	c.logger.Info("Telegram bot started")
	return nil
}

// Stop ends long polling. Sending keeps working until Close.
func (c *Client) Stop() {
	c.api.StopReceivingUpdates()
	c.logger.Info("Telegram bot stopped")
}

// Close aborts pending rate limiter waits.
func (c *Client) Close() {
	c.cancel()
}

func (c *Client) GetUpdates() <-chan tgbotapi.Update {
	return c.updates
}

// SendMessage sends plain text with rate limiting.
func (c *Client) SendMessage(chatID int64, text string) error {
	_, err := c.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Send sends any chattable with rate limiting.
func (c *Client) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(c.sendCtx); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("rate limiting: %w", err)
	}

	message, err := c.api.Send(chattable)
	if err != nil {
		c.logger.Error("Telegram send failed", slog.Any("error", err))
		return tgbotapi.Message{}, fmt.Errorf("send: %w", err)
	}

	return message, nil
}

// Request performs an API call that does not produce a message.
func (c *Client) Request(chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(c.sendCtx); err != nil {
		return nil, fmt.Errorf("rate limiting: %w", err)
	}

	resp, err := c.api.Request(chattable)
	if err != nil {
		c.logger.Error("Telegram request failed", slog.Any("error", err))
		return nil, fmt.Errorf("request: %w", err)
	}

	return resp, nil
}
