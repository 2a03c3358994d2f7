package storage

import (
	"context"
	"reflect"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type storageImpl struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *storageImpl {
	return &storageImpl{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *storageImpl) stmpBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (s *storageImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *storageImpl) Close() error {
	return s.db.Close()
}

// fields returns the comma separated db tags of a row struct.
func fields(data any) string {
	r := reflect.TypeOf(data)
	tags := make([]string, 0, r.NumField())
	for i := 0; i < r.NumField(); i++ {
		if tag := r.Field(i).Tag.Get("db"); tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, ",")
}
