package legacy

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// Service keeps the set of identities the old side API marked as
// subscribed. Membership grants nothing; access is always checked on the
// map website.
type Service struct {
	storage Storage
	logger  *slog.Logger
}

func NewService(storage Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Add returns false when the identity was already in the set.
func (s *Service) Add(ctx context.Context, telegramID int64) (bool, error) {
	added, err := s.storage.AddSubscriber(ctx, telegramID)
	if err != nil {
		return false, errors.Wrapf(err, "add subscriber %d", telegramID)
	}
	return added, nil
}

// Remove returns false when the identity was not in the set.
func (s *Service) Remove(ctx context.Context, telegramID int64) (bool, error) {
	removed, err := s.storage.RemoveSubscriber(ctx, telegramID)
	if err != nil {
		return false, errors.Wrapf(err, "remove subscriber %d", telegramID)
	}
	if !removed {
		s.logger.Debug("User was not subscribed", slog.Int64("user_id", telegramID))
	}
	return removed, nil
}

func (s *Service) Contains(ctx context.Context, telegramID int64) (bool, error) {
	ok, err := s.storage.HasSubscriber(ctx, telegramID)
	if err != nil {
		return false, errors.Wrapf(err, "check subscriber %d", telegramID)
	}
	return ok, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.storage.CountSubscribers(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count subscribers")
	}
	return n, nil
}

// Clear empties the set and returns how many identities were dropped.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.storage.ClearSubscribers(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "clear subscribers")
	}
	s.logger.Info("Legacy subscriptions cleared", slog.Int("count", n))
	return n, nil
}
