package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"anomonus-bot/internal/stories/links"
)

const linksTable = "user_links"

var linkRowFields = fields(linkRow{})

type linkRow struct {
	TelegramID int64     `db:"telegram_id"`
	Hash       string    `db:"hash"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r linkRow) ToModel() *links.Link {
	return &links.Link{
		TelegramID: r.TelegramID,
		Hash:       r.Hash,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (s *storageImpl) GetLink(ctx context.Context, telegramID int64) (*links.Link, error) {
	q, args, err := s.stmpBuilder().
		Select(linkRowFields).
		From(linksTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row linkRow
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) UpsertLink(ctx context.Context, link links.Link) error {
	q, args, err := s.stmpBuilder().
		Insert(linksTable).
		Columns("telegram_id", "hash", "updated_at").
		Values(link.TelegramID, link.Hash, s.now()).
		Suffix("ON CONFLICT(telegram_id) DO UPDATE SET hash = excluded.hash, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

func (s *storageImpl) CountLinks(ctx context.Context) (int, error) {
	return s.count(ctx, linksTable)
}

func (s *storageImpl) count(ctx context.Context, table string) (int, error) {
	q, args, err := s.stmpBuilder().
		Select("COUNT(*)").
		From(table).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}
	return n, nil
}
