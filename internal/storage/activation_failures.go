package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"anomonus-bot/internal/stories/reconcile"
)

const activationFailuresTable = "activation_failures"

var activationFailureRowFields = fields(activationFailureRow{})

type activationFailureRow struct {
	ChargeID     string       `db:"charge_id"`
	TelegramID   int64        `db:"telegram_id"`
	Hash         string       `db:"hash"`
	TierID       string       `db:"tier_id"`
	DurationDays int          `db:"duration_days"`
	AmountStars  int          `db:"amount_stars"`
	Reason       string       `db:"reason"`
	CreatedAt    time.Time    `db:"created_at"`
	ReportedAt   sql.NullTime `db:"reported_at"`
}

func (r activationFailureRow) ToModel() *reconcile.Failure {
	f := &reconcile.Failure{
		ChargeID:     r.ChargeID,
		TelegramID:   r.TelegramID,
		Hash:         r.Hash,
		TierID:       r.TierID,
		DurationDays: r.DurationDays,
		AmountStars:  r.AmountStars,
		Reason:       reconcile.Reason(r.Reason),
		CreatedAt:    r.CreatedAt,
	}
	if r.ReportedAt.Valid {
		t := r.ReportedAt.Time
		f.ReportedAt = &t
	}
	return f
}

func (s *storageImpl) CreateActivationFailure(ctx context.Context, f reconcile.Failure) error {
	params := map[string]any{
		"charge_id":     f.ChargeID,
		"telegram_id":   f.TelegramID,
		"hash":          f.Hash,
		"tier_id":       f.TierID,
		"duration_days": f.DurationDays,
		"amount_stars":  f.AmountStars,
		"reason":        string(f.Reason),
		"created_at":    f.CreatedAt.UTC(),
	}

	q, args, err := s.stmpBuilder().
		Insert(activationFailuresTable).
		SetMap(params).
		Suffix("ON CONFLICT(charge_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.exec(ctx, q, args)
	return err
}

func (s *storageImpl) ListActivationFailures(ctx context.Context, criteria reconcile.ListCriteria) ([]*reconcile.Failure, error) {
	query := s.stmpBuilder().
		Select(activationFailureRowFields).
		From(activationFailuresTable).
		OrderBy("created_at ASC")

	if criteria.Unreported {
		query = query.Where(sq.Eq{"reported_at": nil})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []activationFailureRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	out := make([]*reconcile.Failure, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToModel())
	}
	return out, nil
}

func (s *storageImpl) MarkActivationFailuresReported(ctx context.Context, chargeIDs []string, at time.Time) error {
	if len(chargeIDs) == 0 {
		return nil
	}

	q, args, err := s.stmpBuilder().
		Update(activationFailuresTable).
		Set("reported_at", at.UTC()).
		Where(sq.Eq{"charge_id": chargeIDs}).
		Where(sq.Eq{"reported_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.exec(ctx, q, args)
	return err
}
