package links

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Service is the local identity to hash cache. Records are only ever
// written or overwritten, never removed.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// Hash returns the linked hash of a chat user, if any.
func (s *Service) Hash(ctx context.Context, telegramID int64) (string, bool, error) {
	link, err := s.storage.GetLink(ctx, telegramID)
	if err != nil {
		return "", false, errors.Wrapf(err, "get link for %d", telegramID)
	}
	if link == nil || link.Hash == "" {
		return "", false, nil
	}
	return link.Hash, true, nil
}

// IsLinked reports whether the user has a cached link.
func (s *Service) IsLinked(ctx context.Context, telegramID int64) (bool, error) {
	_, ok, err := s.Hash(ctx, telegramID)
	return ok, err
}

// Save writes or overwrites the link of a chat user.
func (s *Service) Save(ctx context.Context, telegramID int64, hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return errors.New("empty hash")
	}
	if err := s.storage.UpsertLink(ctx, Link{TelegramID: telegramID, Hash: hash}); err != nil {
		return errors.Wrapf(err, "save link for %d", telegramID)
	}
	return nil
}

// SaveIfAbsent stores the hash only when the user has no cached link yet. It
// reports whether a write happened. An existing link is replaced only by a
// successful validation through Save.
func (s *Service) SaveIfAbsent(ctx context.Context, telegramID int64, hash string) (bool, error) {
	_, ok, err := s.Hash(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.Save(ctx, telegramID, hash); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.storage.CountLinks(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count links")
	}
	return n, nil
}
