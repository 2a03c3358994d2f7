package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type UpdateHandler interface {
	Route(ctx context.Context, update *tgbotapi.Update) error
}

// Dispatcher fans updates out to a fixed set of workers. Updates of one user
// always land on the same worker, so they are handled in order, while
// different users are served in parallel.
type Dispatcher struct {
	handler   UpdateHandler
	workers   int
	queueSize int
	logger    *slog.Logger
}

func NewDispatcher(handler UpdateHandler, workers int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		handler:   handler,
		workers:   workers,
		queueSize: 64,
		logger:    logger,
	}
}

// Run consumes updates until ctx is done or the channel is closed, then
// waits for queued updates to finish.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	queues := make([]chan tgbotapi.Update, d.workers)
	var wg sync.WaitGroup

	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, d.queueSize)
		wg.Add(1)
		go func(q <-chan tgbotapi.Update) {
			defer wg.Done()
			for update := range q {
				d.handle(ctx, update)
			}
		}(queues[i])
	}

	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			q := queues[d.shard(UserID(&update))]
			select {
			case q <- update:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Dispatcher) shard(userID int64) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(d.workers))
}

func (d *Dispatcher) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic while handling update",
				slog.Int("update_id", update.UpdateID),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Handlers get a context that outlives shutdown of the poller so an
	// in-flight payment is still answered.
	if err := d.handler.Route(context.WithoutCancel(ctx), &update); err != nil {
		d.logger.Error("Failed to handle update",
			slog.Int("update_id", update.UpdateID),
			slog.Int64("user_id", UserID(&update)),
			slog.Any("error", err))
	}
}

// UserID returns the sender of an update, or 0 when there is none.
func UserID(update *tgbotapi.Update) int64 {
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
