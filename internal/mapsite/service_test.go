package mapsite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	mapsiteAPI "anomonus-bot/internal/infra/mapsite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	status    *mapsiteAPI.SubscriptionStatus
	user      *mapsiteAPI.UserByHash
	err       error
	links     []mapsiteAPI.LinkRequest
	activates []mapsiteAPI.ActivateRequest
}

func (f *fakeClient) GetSubscription(context.Context, int64) (*mapsiteAPI.SubscriptionStatus, error) {
	return f.status, f.err
}

func (f *fakeClient) GetUserByHash(context.Context, string) (*mapsiteAPI.UserByHash, error) {
	return f.user, f.err
}

func (f *fakeClient) LinkAccount(_ context.Context, req mapsiteAPI.LinkRequest) error {
	f.links = append(f.links, req)
	return f.err
}

func (f *fakeClient) Activate(_ context.Context, req mapsiteAPI.ActivateRequest) error {
	f.activates = append(f.activates, req)
	return f.err
}

var testNow = time.UnixMilli(1_700_000_000_000)

func newTestService(c *fakeClient) *Service {
	return NewService(c, func() time.Time { return testNow }, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr[T any](v T) *T { return &v }

func TestCheckSubscription(t *testing.T) {
	tests := []struct {
		name   string
		status *mapsiteAPI.SubscriptionStatus
		err    error
		want   bool
	}{
		{
			name:   "future expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true, ExpiresAt: ptr(testNow.UnixMilli() + 1)},
			want:   true,
		},
		{
			name:   "expires exactly now",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true, ExpiresAt: ptr(testNow.UnixMilli())},
			want:   false,
		},
		{
			name:   "past expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true, ExpiresAt: ptr(testNow.UnixMilli() - 1000)},
			want:   false,
		},
		{
			name:   "lifetime ignores expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true, IsLifetime: true, ExpiresAt: ptr(int64(1))},
			want:   true,
		},
		{
			name:   "active without expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true},
			want:   true,
		},
		{
			name:   "zero expiry means no expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: true, ExpiresAt: ptr(int64(0))},
			want:   true,
		},
		{
			name:   "inactive with zero expiry",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: false, ExpiresAt: ptr(int64(0))},
			want:   false,
		},
		{
			name:   "inactive lifetime",
			status: &mapsiteAPI.SubscriptionStatus{IsActive: false, IsLifetime: true},
			want:   false,
		},
		{
			name: "not found",
			err:  fmt.Errorf("%w: get", mapsiteAPI.ErrNotFound),
			want: false,
		},
		{
			name: "transport failure",
			err:  fmt.Errorf("%w: boom", mapsiteAPI.ErrTransport),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(&fakeClient{status: tt.status, err: tt.err})
			assert.Equal(t, tt.want, s.CheckSubscription(context.Background(), 777))
		})
	}
}

func TestValidateHash(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := newTestService(&fakeClient{user: &mapsiteAPI.UserByHash{UserID: "42", Hash: "ABCDEFGHIJKL123456789012"}})
		v := s.ValidateHash(context.Background(), "ABCDEFGHIJKL123456789012")
		assert.True(t, v.Valid)
		assert.Equal(t, "42", v.AccountRef)
		assert.Equal(t, OutcomeOK, v.Outcome)
	})

	t.Run("found without user id", func(t *testing.T) {
		s := newTestService(&fakeClient{user: &mapsiteAPI.UserByHash{}})
		v := s.ValidateHash(context.Background(), "ABCDEFGHIJKL123456789012")
		assert.True(t, v.Valid)
		assert.Empty(t, v.AccountRef)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestService(&fakeClient{err: mapsiteAPI.ErrNotFound})
		v := s.ValidateHash(context.Background(), "ABCDEFGHIJKL123456789012")
		assert.False(t, v.Valid)
		assert.Equal(t, OutcomeNotFound, v.Outcome)
		assert.Equal(t, MessageHashNotFound, v.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		s := newTestService(&fakeClient{err: mapsiteAPI.ErrTransport})
		v := s.ValidateHash(context.Background(), "ABCDEFGHIJKL123456789012")
		assert.False(t, v.Valid)
		assert.Equal(t, OutcomeFailure, v.Outcome)
		assert.Equal(t, MessageHashRetry, v.Message)
		assert.NotEqual(t, MessageHashNotFound, v.Message)
	})
}

func TestLinkIdentity(t *testing.T) {
	c := &fakeClient{}
	s := newTestService(c)

	require.True(t, s.LinkIdentity(context.Background(), 777, "alice", "42"))
	require.Len(t, c.links, 1)
	assert.Equal(t, "NDI", c.links[0].StartParam)
	assert.Equal(t, int64(777), c.links[0].UserID)
	assert.Equal(t, "alice", c.links[0].Username)

	c.err = mapsiteAPI.ErrTransport
	assert.False(t, s.LinkIdentity(context.Background(), 777, "", "42"))
}

func TestEncodeStartParam(t *testing.T) {
	assert.Equal(t, "NDI", EncodeStartParam("42"))
	assert.Equal(t, "", EncodeStartParam(""))
	assert.NotContains(t, EncodeStartParam("user?id=1>>"), "=")
}

func TestActivateSubscription(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := &fakeClient{}
		s := newTestService(c)
		res := s.ActivateSubscription(context.Background(), ActivationRequest{
			UserID:       777,
			Hash:         "ABCDEFGHIJKL123456789012",
			DurationDays: 30,
			TierID:       "1month",
			ChargeID:     "charge-1",
		})
		assert.True(t, res.Activated)
		require.Len(t, c.activates, 1)
		assert.Equal(t, "1month", c.activates[0].SubscriptionType)
		assert.NotEmpty(t, c.activates[0].IdempotencyKey)
	})

	t.Run("same charge same key", func(t *testing.T) {
		c := &fakeClient{}
		s := newTestService(c)
		req := ActivationRequest{UserID: 1, DurationDays: 30, ChargeID: "charge-1"}
		s.ActivateSubscription(context.Background(), req)
		s.ActivateSubscription(context.Background(), req)
		req.ChargeID = "charge-2"
		s.ActivateSubscription(context.Background(), req)

		require.Len(t, c.activates, 3)
		assert.Equal(t, c.activates[0].IdempotencyKey, c.activates[1].IdempotencyKey)
		assert.NotEqual(t, c.activates[0].IdempotencyKey, c.activates[2].IdempotencyKey)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := newTestService(&fakeClient{err: mapsiteAPI.ErrNotFound})
		res := s.ActivateSubscription(context.Background(), ActivationRequest{UserID: 1, DurationDays: 30})
		assert.False(t, res.Activated)
		assert.True(t, res.UnknownUser())
	})

	t.Run("failure", func(t *testing.T) {
		s := newTestService(&fakeClient{err: mapsiteAPI.ErrTransport})
		res := s.ActivateSubscription(context.Background(), ActivationRequest{UserID: 1, DurationDays: 30})
		assert.False(t, res.Activated)
		assert.False(t, res.UnknownUser())
		assert.Equal(t, OutcomeFailure, res.Outcome)
	})
}
