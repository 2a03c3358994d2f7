package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu    sync.Mutex
	seen  map[int64][]int
	panic bool
}

func (h *recordingHandler) Route(_ context.Context, u *tgbotapi.Update) error {
	if h.panic && u.UpdateID == 0 {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	id := UserID(u)
	h.seen[id] = append(h.seen[id], u.UpdateID)
	if u.UpdateID%7 == 0 {
		return errors.New("handler failed")
	}
	return nil
}

func messageUpdate(updateID int, userID int64) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: "hi",
		},
	}
}

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	h := &recordingHandler{seen: map[int64][]int{}}
	d := NewDispatcher(h, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), updates)
		close(done)
	}()

	for i := 1; i <= 300; i++ {
		updates <- messageUpdate(i, int64(i%10))
	}
	close(updates)
	<-done

	total := 0
	for user, ids := range h.seen {
		total += len(ids)
		for i := 1; i < len(ids); i++ {
			require.Less(t, ids[i-1], ids[i], "user %d", user)
		}
	}
	assert.Equal(t, 300, total)
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	h := &recordingHandler{seen: map[int64][]int{}, panic: true}
	d := NewDispatcher(h, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updates := make(chan tgbotapi.Update, 2)
	updates <- messageUpdate(0, 5)
	updates <- messageUpdate(1, 5)
	close(updates)

	d.Run(context.Background(), updates)
	assert.Equal(t, []int{1}, h.seen[5])
}

func TestUserID(t *testing.T) {
	assert.Equal(t, int64(3), UserID(&tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 3}}}))
	assert.Equal(t, int64(4), UserID(&tgbotapi.Update{PreCheckoutQuery: &tgbotapi.PreCheckoutQuery{From: &tgbotapi.User{ID: 4}}}))
	assert.Zero(t, UserID(&tgbotapi.Update{}))
}

func TestShardIsStable(t *testing.T) {
	d := NewDispatcher(&recordingHandler{}, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, d.shard(12345), d.shard(12345))
	assert.GreaterOrEqual(t, d.shard(-9), 0)
	assert.Less(t, d.shard(-9), 8)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, isPermanent(&tgbotapi.Error{Code: 401, Message: "Unauthorized"}))
	assert.False(t, isPermanent(&tgbotapi.Error{Code: 502}))
	assert.False(t, isPermanent(errors.New("dial tcp: timeout")))
}
