package links

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	links  map[int64]string
	writes int
	err    error
}

func newMemStorage() *memStorage {
	return &memStorage{links: map[int64]string{}}
}

func (m *memStorage) GetLink(_ context.Context, id int64) (*Link, error) {
	if m.err != nil {
		return nil, m.err
	}
	h, ok := m.links[id]
	if !ok {
		return nil, nil
	}
	return &Link{TelegramID: id, Hash: h}, nil
}

func (m *memStorage) UpsertLink(_ context.Context, l Link) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.links[l.TelegramID] = l.Hash
	return nil
}

func (m *memStorage) CountLinks(context.Context) (int, error) {
	return len(m.links), m.err
}

func TestSaveAndHash(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemStorage())

	_, ok, err := s.Hash(ctx, 777)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, 777, " ABCDEFGHIJKL123456789012 "))
	h, ok, err := s.Hash(ctx, 777)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ABCDEFGHIJKL123456789012", h)

	require.NoError(t, s.Save(ctx, 777, "ZZZZZZZZZZZZ000000000000"))
	h, _, _ = s.Hash(ctx, 777)
	assert.Equal(t, "ZZZZZZZZZZZZ000000000000", h)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveRejectsEmptyHash(t *testing.T) {
	assert.Error(t, NewService(newMemStorage()).Save(context.Background(), 1, "  "))
}

func TestSaveIfAbsentKeepsExistingLink(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := NewService(st)

	written, err := s.SaveIfAbsent(ctx, 1, "ABCDEFGHIJKL123456789012")
	require.NoError(t, err)
	assert.True(t, written)

	written, err = s.SaveIfAbsent(ctx, 1, "ZZZZZZZZZZZZ000000000000")
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, 1, st.writes)

	h, _, err := s.Hash(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJKL123456789012", h)
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk full")
	st := newMemStorage()
	st.err = boom
	s := NewService(st)

	_, _, err := s.Hash(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Save(context.Background(), 1, "x"), boom)
}
