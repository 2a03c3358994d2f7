package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

const defaultBatch = 50

// Service records payments that were taken but never activated so that an
// operator can settle them by hand. It never retries activation itself.
type Service struct {
	storage Storage
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(storage Storage, now func() time.Time, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		now:     now,
		logger:  logger,
	}
}

func (s *Service) Record(ctx context.Context, f Failure) error {
	if f.ChargeID == "" {
		return errors.New("activation failure without charge id")
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	f.ReportedAt = nil

	if err := s.storage.CreateActivationFailure(ctx, f); err != nil {
		return errors.Wrapf(err, "record activation failure %s", f.ChargeID)
	}

	s.logger.Warn("Activation failure recorded",
		slog.String("charge_id", f.ChargeID),
		slog.Int64("user_id", f.TelegramID),
		slog.String("tier", f.TierID),
		slog.String("reason", string(f.Reason)))
	return nil
}

// Unreported returns up to limit failures nobody has been told about yet,
// oldest first.
func (s *Service) Unreported(ctx context.Context, limit int) ([]*Failure, error) {
	if limit <= 0 {
		limit = defaultBatch
	}
	failures, err := s.storage.ListActivationFailures(ctx, ListCriteria{Unreported: true, Limit: limit})
	if err != nil {
		return nil, errors.Wrap(err, "list unreported activation failures")
	}
	return failures, nil
}

func (s *Service) MarkReported(ctx context.Context, chargeIDs []string) error {
	if len(chargeIDs) == 0 {
		return nil
	}
	if err := s.storage.MarkActivationFailuresReported(ctx, chargeIDs, s.now()); err != nil {
		return errors.Wrap(err, "mark activation failures reported")
	}
	return nil
}
