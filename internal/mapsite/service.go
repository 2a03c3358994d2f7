package mapsite

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	mapsiteAPI "anomonus-bot/internal/infra/mapsite"

	"github.com/google/uuid"
)

// activationNamespace scopes idempotency keys derived from payment charge ids.
var activationNamespace = uuid.MustParse("6f1c3b0e-6a8f-4f55-9a53-3f5e0d5c2a11")

// Service is the bot's view of the map website: the single source of truth
// for subscription state. Every failure is converted into a plain result;
// nothing here returns an error to the caller.
type Service struct {
	client Client
	now    func() time.Time
	logger *slog.Logger
}

func NewService(client Client, now func() time.Time, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		now:    now,
		logger: logger,
	}
}

// CheckSubscription reports whether the user currently has access. It fails
// closed: unreachable website, 404 and malformed answers all mean false.
func (s *Service) CheckSubscription(ctx context.Context, userID int64) bool {
	status, err := s.client.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, mapsiteAPI.ErrNotFound) {
			s.logger.Debug("User not found on map website", slog.Int64("user_id", userID))
		} else {
			s.logger.Warn("Subscription check failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return false
	}

	return IsActive(status, s.now())
}

// IsActive applies the access rule to a subscription status at the given
// moment, compared in epoch milliseconds. A missing or zero expiry means the
// subscription does not expire.
func IsActive(status *mapsiteAPI.SubscriptionStatus, at time.Time) bool {
	if status == nil || !status.IsActive {
		return false
	}
	if status.IsLifetime || status.ExpiresAt == nil || *status.ExpiresAt == 0 {
		return true
	}
	return *status.ExpiresAt > at.UnixMilli()
}

// ValidateHash asks the website who owns the hash.
func (s *Service) ValidateHash(ctx context.Context, hash string) HashValidation {
	user, err := s.client.GetUserByHash(ctx, hash)
	switch {
	case err == nil:
		return HashValidation{
			Valid:      true,
			AccountRef: user.UserID,
			Hash:       user.Hash,
			Message:    MessageHashValid,
			Outcome:    OutcomeOK,
		}
	case errors.Is(err, mapsiteAPI.ErrNotFound):
		return HashValidation{Message: MessageHashNotFound, Outcome: OutcomeNotFound}
	default:
		s.logger.Warn("Hash validation failed", slog.Any("error", err))
		return HashValidation{Message: MessageHashRetry, Outcome: OutcomeFailure}
	}
}

// LinkIdentity attaches the chat user to the website account. The account
// reference travels as an unpadded base64url start parameter.
func (s *Service) LinkIdentity(ctx context.Context, userID int64, username, accountRef string) bool {
	err := s.client.LinkAccount(ctx, mapsiteAPI.LinkRequest{
		StartParam: EncodeStartParam(accountRef),
		UserID:     userID,
		Username:   username,
	})
	if err != nil {
		s.logger.Warn("Failed to link telegram user",
			slog.Int64("user_id", userID),
			slog.String("account_ref", accountRef),
			slog.Any("error", err))
		return false
	}

	s.logger.Info("Telegram user linked to website account",
		slog.Int64("user_id", userID),
		slog.String("account_ref", accountRef))
	return true
}

// ActivateSubscription requests activation. The website's answer is the only
// thing that decides whether the user has access.
func (s *Service) ActivateSubscription(ctx context.Context, req ActivationRequest) ActivationResult {
	apiReq := mapsiteAPI.ActivateRequest{
		UserID:           req.UserID,
		DurationDays:     req.DurationDays,
		Hash:             req.Hash,
		SubscriptionType: req.TierID,
	}
	if req.ChargeID != "" {
		apiReq.IdempotencyKey = uuid.NewSHA1(activationNamespace, []byte(req.ChargeID)).String()
	}

	err := s.client.Activate(ctx, apiReq)
	switch {
	case err == nil:
		s.logger.Info("Subscription activated on map website",
			slog.Int64("user_id", req.UserID),
			slog.String("tier", req.TierID),
			slog.Int("duration_days", req.DurationDays))
		return ActivationResult{Activated: true, Outcome: OutcomeOK}
	case errors.Is(err, mapsiteAPI.ErrNotFound):
		s.logger.Warn("User not found on map website, must register before activation",
			slog.Int64("user_id", req.UserID))
		return ActivationResult{Outcome: OutcomeNotFound}
	default:
		s.logger.Error("Subscription activation failed",
			slog.Int64("user_id", req.UserID),
			slog.String("tier", req.TierID),
			slog.Any("error", err))
		return ActivationResult{Outcome: OutcomeFailure}
	}
}

func EncodeStartParam(accountRef string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(accountRef))
}
