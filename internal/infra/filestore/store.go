package filestore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"anomonus-bot/internal/stories/links"
	"anomonus-bot/internal/stories/reconcile"
)

var ErrCorrupt = errors.New("corrupt store file")

type subscribersFile struct {
	Users []int64 `json:"users"`
}

type failuresFile struct {
	Failures []failureRecord `json:"failures"`
}

type failureRecord struct {
	ChargeID     string     `json:"chargeId"`
	TelegramID   int64      `json:"telegramUserId"`
	Hash         string     `json:"hash,omitempty"`
	TierID       string     `json:"tierId,omitempty"`
	DurationDays int        `json:"durationDays,omitempty"`
	AmountStars  int        `json:"amountStars,omitempty"`
	Reason       string     `json:"reason"`
	CreatedAt    time.Time  `json:"createdAt"`
	ReportedAt   *time.Time `json:"reportedAt,omitempty"`
}

func (r failureRecord) ToModel() *reconcile.Failure {
	return &reconcile.Failure{
		ChargeID:     r.ChargeID,
		TelegramID:   r.TelegramID,
		Hash:         r.Hash,
		TierID:       r.TierID,
		DurationDays: r.DurationDays,
		AmountStars:  r.AmountStars,
		Reason:       reconcile.Reason(r.Reason),
		CreatedAt:    r.CreatedAt,
		ReportedAt:   r.ReportedAt,
	}
}

// Store keeps links, legacy subscribers and activation failures in three
// JSON files. The links file is a flat {"<telegram id>": "<hash>"} object.
type Store struct {
	links       *document[map[string]string]
	subscribers *document[subscribersFile]
	failures    *document[failuresFile]
	dirs        []string
}

func Open(linksPath, subscribersPath, failuresPath string) (*Store, error) {
	l, err := openDocument(linksPath, func() map[string]string { return map[string]string{} })
	if err != nil {
		return nil, err
	}
	if l.data == nil {
		l.data = map[string]string{}
	}

	s, err := openDocument(subscribersPath, func() subscribersFile { return subscribersFile{} })
	if err != nil {
		return nil, err
	}

	f, err := openDocument(failuresPath, func() failuresFile { return failuresFile{} })
	if err != nil {
		return nil, err
	}

	return &Store{
		links:       l,
		subscribers: s,
		failures:    f,
		dirs: []string{
			filepath.Dir(linksPath),
			filepath.Dir(subscribersPath),
			filepath.Dir(failuresPath),
		},
	}, nil
}

// Ping checks that the store directories are still reachable.
func (s *Store) Ping(ctx context.Context) error {
	for _, dir := range s.dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(dir)
		if errors.Is(err, os.ErrNotExist) {
			// Created on first write.
			continue
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) GetLink(_ context.Context, telegramID int64) (*links.Link, error) {
	var link *links.Link
	s.links.read(func(m map[string]string) {
		if h, ok := m[strconv.FormatInt(telegramID, 10)]; ok {
			link = &links.Link{TelegramID: telegramID, Hash: h}
		}
	})
	return link, nil
}

func (s *Store) UpsertLink(_ context.Context, link links.Link) error {
	key := strconv.FormatInt(link.TelegramID, 10)
	return s.links.update(func(m map[string]string) (map[string]string, bool) {
		if cur, ok := m[key]; ok && cur == link.Hash {
			return m, false
		}
		next := maps.Clone(m)
		next[key] = link.Hash
		return next, true
	})
}

func (s *Store) CountLinks(context.Context) (int, error) {
	var n int
	s.links.read(func(m map[string]string) { n = len(m) })
	return n, nil
}

// ListLinks returns every link ordered by telegram id.
func (s *Store) ListLinks(context.Context) ([]*links.Link, error) {
	var (
		out []*links.Link
		err error
	)
	s.links.read(func(m map[string]string) {
		out = make([]*links.Link, 0, len(m))
		for key, hash := range m {
			id, perr := strconv.ParseInt(key, 10, 64)
			if perr != nil {
				err = fmt.Errorf("%w: telegram id %q", ErrCorrupt, key)
				return
			}
			out = append(out, &links.Link{TelegramID: id, Hash: hash})
		}
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *links.Link) int {
		return cmp.Compare(a.TelegramID, b.TelegramID)
	})
	return out, nil
}

func (s *Store) AddSubscriber(_ context.Context, telegramID int64) (bool, error) {
	var added bool
	err := s.subscribers.update(func(f subscribersFile) (subscribersFile, bool) {
		if slices.Contains(f.Users, telegramID) {
			return f, false
		}
		added = true
		users := append(slices.Clone(f.Users), telegramID)
		slices.Sort(users)
		return subscribersFile{Users: users}, true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *Store) RemoveSubscriber(_ context.Context, telegramID int64) (bool, error) {
	var removed bool
	err := s.subscribers.update(func(f subscribersFile) (subscribersFile, bool) {
		i := slices.Index(f.Users, telegramID)
		if i < 0 {
			return f, false
		}
		removed = true
		return subscribersFile{Users: slices.Delete(slices.Clone(f.Users), i, i+1)}, true
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *Store) HasSubscriber(_ context.Context, telegramID int64) (bool, error) {
	var ok bool
	s.subscribers.read(func(f subscribersFile) { ok = slices.Contains(f.Users, telegramID) })
	return ok, nil
}

func (s *Store) CountSubscribers(context.Context) (int, error) {
	var n int
	s.subscribers.read(func(f subscribersFile) { n = len(f.Users) })
	return n, nil
}

// ClearSubscribers always rewrites the file, even when it is already empty.
func (s *Store) ClearSubscribers(context.Context) (int, error) {
	var n int
	err := s.subscribers.update(func(f subscribersFile) (subscribersFile, bool) {
		n = len(f.Users)
		return subscribersFile{Users: []int64{}}, true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CreateActivationFailure(_ context.Context, failure reconcile.Failure) error {
	return s.failures.update(func(f failuresFile) (failuresFile, bool) {
		for _, r := range f.Failures {
			if r.ChargeID == failure.ChargeID {
				return f, false
			}
		}
		rec := failureRecord{
			ChargeID:     failure.ChargeID,
			TelegramID:   failure.TelegramID,
			Hash:         failure.Hash,
			TierID:       failure.TierID,
			DurationDays: failure.DurationDays,
			AmountStars:  failure.AmountStars,
			Reason:       string(failure.Reason),
			CreatedAt:    failure.CreatedAt.UTC(),
		}
		return failuresFile{Failures: append(slices.Clone(f.Failures), rec)}, true
	})
}

func (s *Store) ListActivationFailures(_ context.Context, criteria reconcile.ListCriteria) ([]*reconcile.Failure, error) {
	var out []*reconcile.Failure
	s.failures.read(func(f failuresFile) {
		for _, r := range f.Failures {
			if criteria.Unreported && r.ReportedAt != nil {
				continue
			}
			out = append(out, r.ToModel())
		}
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if criteria.Limit > 0 && len(out) > criteria.Limit {
		out = out[:criteria.Limit]
	}
	return out, nil
}

func (s *Store) MarkActivationFailuresReported(_ context.Context, chargeIDs []string, at time.Time) error {
	return s.failures.update(func(f failuresFile) (failuresFile, bool) {
		next := slices.Clone(f.Failures)
		changed := false
		reportedAt := at.UTC()
		for i := range next {
			if next[i].ReportedAt == nil && slices.Contains(chargeIDs, next[i].ChargeID) {
				next[i].ReportedAt = &reportedAt
				changed = true
			}
		}
		return failuresFile{Failures: next}, changed
	})
}
