package reconcile

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	failures map[string]*Failure
}

func (m *memStorage) CreateActivationFailure(_ context.Context, f Failure) error {
	if _, ok := m.failures[f.ChargeID]; ok {
		return nil
	}
	m.failures[f.ChargeID] = &f
	return nil
}

func (m *memStorage) ListActivationFailures(_ context.Context, c ListCriteria) ([]*Failure, error) {
	var out []*Failure
	for _, f := range m.failures {
		if c.Unreported && f.ReportedAt != nil {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out, nil
}

func (m *memStorage) MarkActivationFailuresReported(_ context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		if f, ok := m.failures[id]; ok {
			f.ReportedAt = &at
		}
	}
	return nil
}

func TestRecordAndReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &memStorage{failures: map[string]*Failure{}}
	s := NewService(st, func() time.Time { return now }, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.Record(ctx, Failure{ChargeID: "c1", TelegramID: 1, TierID: "1month", Reason: ReasonRemoteFailure}))
	require.NoError(t, s.Record(ctx, Failure{ChargeID: "c1", TelegramID: 1, TierID: "1month", Reason: ReasonRemoteFailure}))
	require.NoError(t, s.Record(ctx, Failure{ChargeID: "c2", TelegramID: 2, TierID: "1year", Reason: ReasonUnknownUser, CreatedAt: now.Add(time.Minute)}))
	assert.Error(t, s.Record(ctx, Failure{TelegramID: 3}))

	pending, err := s.Unreported(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "c1", pending[0].ChargeID)
	assert.Equal(t, now, pending[0].CreatedAt)

	require.NoError(t, s.MarkReported(ctx, []string{"c1"}))
	pending, err = s.Unreported(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].ChargeID)

	require.NoError(t, s.MarkReported(ctx, nil))
}
