package storage

import (
	"context"
	"testing"
	"time"

	"anomonus-bot/internal/infra/sqlite3"
	"anomonus-bot/internal/stories/links"
	"anomonus-bot/internal/stories/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *storageImpl {
	t.Helper()
	db, err := sqlite3.New(context.Background(), sqlite3.WithDSN(":memory:"), sqlite3.WithMaxOpenConns(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db.DB)
}

func TestFields(t *testing.T) {
	assert.Equal(t, "telegram_id,hash,updated_at", fields(linkRow{}))
}

func TestLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	got, err := s.GetLink(ctx, 777)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.UpsertLink(ctx, links.Link{TelegramID: 777, Hash: "ABCDEFGHIJKL123456789012"}))
	require.NoError(t, s.UpsertLink(ctx, links.Link{TelegramID: 777, Hash: "ZZZZZZZZZZZZ000000000000"}))

	got, err = s.GetLink(ctx, 777)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ZZZZZZZZZZZZ000000000000", got.Hash)
	assert.False(t, got.UpdatedAt.IsZero())

	n, err := s.CountLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubscribers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	added, err := s.AddSubscriber(ctx, 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddSubscriber(ctx, 1)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.AddSubscriber(ctx, 2)
	require.NoError(t, err)

	ok, err := s.HasSubscriber(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.RemoveSubscriber(ctx, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := s.ClearSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestActivationFailures(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateActivationFailure(ctx, reconcile.Failure{
		ChargeID: "c2", TelegramID: 2, TierID: "1year", Reason: reconcile.ReasonUnknownUser, CreatedAt: t0.Add(time.Hour),
	}))
	require.NoError(t, s.CreateActivationFailure(ctx, reconcile.Failure{
		ChargeID: "c1", TelegramID: 1, TierID: "1month", DurationDays: 30, Reason: reconcile.ReasonRemoteFailure, CreatedAt: t0,
	}))
	require.NoError(t, s.CreateActivationFailure(ctx, reconcile.Failure{ChargeID: "c1", TelegramID: 99, Reason: reconcile.ReasonRemoteFailure, CreatedAt: t0}))

	all, err := s.ListActivationFailures(ctx, reconcile.ListCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ChargeID)
	assert.Equal(t, int64(1), all[0].TelegramID)
	assert.Equal(t, 30, all[0].DurationDays)
	assert.Nil(t, all[0].ReportedAt)

	require.NoError(t, s.MarkActivationFailuresReported(ctx, []string{"c1"}, t0.Add(2*time.Hour)))

	pending, err := s.ListActivationFailures(ctx, reconcile.ListCriteria{Unreported: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].ChargeID)
}
