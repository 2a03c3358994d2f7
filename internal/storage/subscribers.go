package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const subscribersTable = "legacy_subscribers"

func (s *storageImpl) AddSubscriber(ctx context.Context, telegramID int64) (bool, error) {
	q, args, err := s.stmpBuilder().
		Insert(subscribersTable).
		Columns("telegram_id", "created_at").
		Values(telegramID, s.now()).
		Suffix("ON CONFLICT(telegram_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	n, err := s.exec(ctx, q, args)
	return n > 0, err
}

func (s *storageImpl) RemoveSubscriber(ctx context.Context, telegramID int64) (bool, error) {
	q, args, err := s.stmpBuilder().
		Delete(subscribersTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	n, err := s.exec(ctx, q, args)
	return n > 0, err
}

func (s *storageImpl) HasSubscriber(ctx context.Context, telegramID int64) (bool, error) {
	q, args, err := s.stmpBuilder().
		Select("COUNT(*)").
		From(subscribersTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return false, fmt.Errorf("db.GetContext: %w", err)
	}
	return n > 0, nil
}

func (s *storageImpl) CountSubscribers(ctx context.Context) (int, error) {
	return s.count(ctx, subscribersTable)
}

func (s *storageImpl) ClearSubscribers(ctx context.Context) (int, error) {
	q, args, err := s.stmpBuilder().
		Delete(subscribersTable).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	n, err := s.exec(ctx, q, args)
	return int(n), err
}

func (s *storageImpl) exec(ctx context.Context, q string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}
	return n, nil
}
